// Package portfolio собирает плоский манифест ассетов в дерево
// Category → Project → Group → MediaItem.
//
// Индекс — производные данные: строится заново на каждый вызов Build
// и никогда не мутируется после построения.
package portfolio

import (
	"math"

	"github.com/ilkoid/pixelbros-assets/pkg/media"
)

const (
	// NoOrder — порядок файла без цифр в имени. Такие файлы идут последними.
	NoOrder = math.MaxInt

	// DefaultGroupID и DefaultGroupName — неявная группа проекта без подпапок.
	DefaultGroupID   = "default"
	DefaultGroupName = "Galeria"
)

// AssetRecord — один найденный медиафайл до раскладки по индексу.
type AssetRecord struct {
	RawPath   string     `json:"rawPath"`
	URL       string     `json:"url"`
	MediaType media.Type `json:"mediaType"`
}

// MediaItem — ассет внутри упорядоченной группы.
type MediaItem struct {
	ID   int        `json:"id"` // позиция в группе после сортировки, с 1
	Src  string     `json:"src"`
	Type media.Type `json:"type"`
	Alt  string     `json:"alt"`

	// Poster — JPEG первого кадра для видео на CDN, иначе пусто.
	Poster string `json:"poster,omitempty"`

	Order   int    `json:"-"` // первая группа цифр в имени файла
	SortKey string `json:"-"` // имя файла в нижнем регистре
}

// Group — подгалерея проекта (подпапка или неявная "Galeria").
type Group struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Items []MediaItem `json:"items"`
}

// Project — один кейс портфолио.
type Project struct {
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	CategoryID   string   `json:"categoryId"`
	CategoryName string   `json:"categoryName"`
	Groups       []*Group `json:"groups"`

	// Items заполнен только если у проекта ровно одна группа.
	Items []MediaItem `json:"items"`

	// CoverSrc — первый элемент первой группы, nil если медиа нет.
	CoverSrc  *string    `json:"coverSrc"`
	CoverType media.Type `json:"coverType,omitempty"`
}

// HasCover сообщает, есть ли у проекта обложка.
func (p *Project) HasCover() bool {
	return p.CoverSrc != nil
}

// Category — верхний уровень ("Branding", "Social Media").
type Category struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Projects []*Project `json:"projects"`
}

// CollisionKind — уровень дерева, на котором два разных имени дали один slug.
type CollisionKind string

const (
	CollisionCategory CollisionKind = "category"
	CollisionProject  CollisionKind = "project"
	CollisionGroup    CollisionKind = "group"

	// CollisionSlug — проекты из разных категорий с одинаковым итоговым slug.
	// Kept и Merged в форме "категория/проект".
	CollisionSlug CollisionKind = "slug"
)

// Collision фиксирует слияние двух по-разному написанных имён в один узел.
//
// Kept — имя, которое осталось в индексе, Merged — имя, чьи файлы были влиты.
type Collision struct {
	Kind   CollisionKind `json:"kind"`
	Slug   string        `json:"slug"`
	Kept   string        `json:"kept"`
	Merged string        `json:"merged"`
}

// Index — корневой агрегат.
type Index struct {
	Categories []*Category         `json:"categories"`
	Projects   []*Project          `json:"projects"`
	BySlug     map[string]*Project `json:"projectsBySlug"`

	// Диагностика
	Collisions []Collision `json:"collisions,omitempty"`
	Skipped    int         `json:"skipped"`

	covers []string
}
