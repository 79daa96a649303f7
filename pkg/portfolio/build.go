package portfolio

import (
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ilkoid/pixelbros-assets/pkg/media"
	"github.com/ilkoid/pixelbros-assets/pkg/slug"
)

var (
	portfolioKey = regexp.MustCompile(`/Portfolio/([^/]+)/([^/]+)/(.+)$`)
	coverKey     = regexp.MustCompile(`/Portfolio/([^/]+)/([^/]+)/`)
	digitRun     = regexp.MustCompile(`[0-9]+`)
)

// FileOrder возвращает первую группу цифр в имени файла как число.
//
// "img2_v3.jpg" → 2. Без цифр → NoOrder. Слишком длинные числа
// прижимаются к NoOrder-1, чтобы оставаться перед файлами без номера.
func FileOrder(fileName string) int {
	run := digitRun.FindString(fileName)
	if run == "" {
		return NoOrder
	}
	n, err := strconv.Atoi(run)
	if err != nil {
		return NoOrder - 1
	}
	return n
}

// Узлы свёртки. После Build они замораживаются в отсортированные срезы.
type categoryNode struct {
	category *Category
	projects map[string]*projectNode
}

type projectNode struct {
	project *Project
	groups  map[string]*Group
}

// Build сворачивает манифест (ключ → URL) в индекс портфолио.
//
// Ключи без сегмента "/Portfolio/<category>/<project>/<file>" и файлы вне
// allow-list молча пропускаются (считаются в Skipped). Ключи обходятся в
// отсортированном порядке, поэтому "первое вхождение" имени детерминировано,
// а финальный порядок на каждом уровне задаётся явной сортировкой.
//
// Build не делает I/O и не держит общего состояния: безопасен для
// конкурентного вызова.
func Build(assets map[string]string) *Index {
	b := &builder{
		categories: make(map[string]*categoryNode),
		projects:   make(map[string]*projectNode),
		collisions: make(map[Collision]struct{}),
		cmp:        newComparer(),
	}

	keys := make([]string, 0, len(assets))
	for k := range assets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b.add(k, assets[k])
	}

	idx := b.finish()
	idx.covers = extractCovers(keys, assets)
	return idx
}

type builder struct {
	categories map[string]*categoryNode
	projects   map[string]*projectNode // slug проекта уникален во всём индексе
	collisions map[Collision]struct{}
	skipped    int
	cmp        *comparer
}

func (b *builder) add(rawPath, src string) {
	path := strings.ReplaceAll(rawPath, `\`, "/")
	m := portfolioKey.FindStringSubmatch(path)
	if m == nil {
		b.skipped++
		return
	}
	categoryName, projectName, rest := m[1], m[2], m[3]

	parts := strings.Split(rest, "/")
	fileName := parts[len(parts)-1]
	if !media.IsAllowed(fileName) {
		b.skipped++
		return
	}
	subprojectName := ""
	if len(parts) > 1 {
		subprojectName = parts[0]
	}

	categorySlug := slug.Slugify(categoryName)
	projectSlug := categorySlug + "-" + slug.Slugify(projectName)

	cat, ok := b.categories[categorySlug]
	if !ok {
		cat = &categoryNode{
			category: &Category{ID: categorySlug, Name: categoryName},
			projects: make(map[string]*projectNode),
		}
		b.categories[categorySlug] = cat
	} else if cat.category.Name != categoryName {
		b.collide(CollisionCategory, categorySlug, cat.category.Name, categoryName)
	}

	// "A B"/"C" и "A"/"B C" дают один slug в разных категориях: файлы уходят
	// в проект, встреченный первым.
	proj, ok := b.projects[projectSlug]
	switch {
	case !ok:
		proj = &projectNode{
			project: &Project{
				Slug:         projectSlug,
				Title:        projectName,
				CategoryID:   categorySlug,
				CategoryName: cat.category.Name,
			},
			groups: make(map[string]*Group),
		}
		cat.projects[projectSlug] = proj
		b.projects[projectSlug] = proj
	case proj.project.CategoryID != categorySlug:
		b.collide(CollisionSlug, projectSlug,
			proj.project.CategoryName+"/"+proj.project.Title, categoryName+"/"+projectName)
	case proj.project.Title != projectName:
		b.collide(CollisionProject, projectSlug, proj.project.Title, projectName)
	}

	groupID, groupName := DefaultGroupID, DefaultGroupName
	if subprojectName != "" {
		groupID, groupName = slug.Slugify(subprojectName), subprojectName
	}
	group, ok := proj.groups[groupID]
	if !ok {
		group = &Group{ID: groupID, Name: groupName}
		proj.groups[groupID] = group
	} else if group.Name != groupName {
		b.collide(CollisionGroup, projectSlug+"/"+groupID, group.Name, groupName)
	}

	group.Items = append(group.Items, MediaItem{
		Src:     src,
		Type:    media.TypeOf(fileName),
		Poster:  PosterURL(src),
		Alt:     projectName + " " + fileName,
		Order:   FileOrder(fileName),
		SortKey: strings.ToLower(fileName),
	})
}

func (b *builder) collide(kind CollisionKind, slugValue, kept, merged string) {
	b.collisions[Collision{Kind: kind, Slug: slugValue, Kept: kept, Merged: merged}] = struct{}{}
}

// finish сортирует каждый уровень и считает обложки.
func (b *builder) finish() *Index {
	idx := &Index{
		Categories: make([]*Category, 0, len(b.categories)),
		Projects:   []*Project{},
		BySlug:     make(map[string]*Project),
		Skipped:    b.skipped,
	}

	for _, cat := range b.categories {
		// категория, все проекты которой влиты в чужие, в индекс не попадает
		if len(cat.projects) == 0 {
			continue
		}
		for _, proj := range cat.projects {
			p := proj.project
			for _, g := range proj.groups {
				slices.SortFunc(g.Items, b.cmp.items)
				for i := range g.Items {
					g.Items[i].ID = i + 1
				}
				p.Groups = append(p.Groups, g)
			}
			slices.SortFunc(p.Groups, b.cmp.groups)

			if len(p.Groups) == 1 {
				p.Items = p.Groups[0].Items
			}
			if len(p.Groups) > 0 && len(p.Groups[0].Items) > 0 {
				cover := p.Groups[0].Items[0]
				p.CoverSrc = &cover.Src
				p.CoverType = cover.Type
			}
			cat.category.Projects = append(cat.category.Projects, p)
		}
		slices.SortFunc(cat.category.Projects, b.cmp.projects)
		idx.Categories = append(idx.Categories, cat.category)
	}
	slices.SortFunc(idx.Categories, b.cmp.categories)

	for _, cat := range idx.Categories {
		idx.Projects = append(idx.Projects, cat.Projects...)
	}
	for _, p := range idx.Projects {
		idx.BySlug[p.Slug] = p
	}

	for c := range b.collisions {
		idx.Collisions = append(idx.Collisions, c)
	}
	slices.SortFunc(idx.Collisions, func(a, c Collision) int {
		return strings.Compare(
			string(a.Kind)+"\x00"+a.Slug+"\x00"+a.Merged,
			string(c.Kind)+"\x00"+c.Slug+"\x00"+c.Merged,
		)
	})

	return idx
}

// comparer — сравнение без учёта регистра и диакритики с побайтовым
// tie-break, чтобы порядок был полным.
//
// collate.Collator не потокобезопасен, поэтому каждый Build создаёт свой.
type comparer struct {
	col *collate.Collator
}

func newComparer() *comparer {
	return &comparer{col: collate.New(language.Und, collate.IgnoreCase, collate.IgnoreDiacritics)}
}

func (c *comparer) text(a, b string) int {
	if r := c.col.CompareString(a, b); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

func (c *comparer) items(a, b MediaItem) int {
	switch {
	case a.Order < b.Order:
		return -1
	case a.Order > b.Order:
		return 1
	}
	if r := c.text(a.SortKey, b.SortKey); r != 0 {
		return r
	}
	return strings.Compare(a.Src, b.Src)
}

func (c *comparer) groups(a, b *Group) int {
	if r := c.text(a.Name, b.Name); r != 0 {
		return r
	}
	return strings.Compare(a.ID, b.ID)
}

func (c *comparer) projects(a, b *Project) int {
	if r := c.text(a.Title, b.Title); r != 0 {
		return r
	}
	return strings.Compare(a.Slug, b.Slug)
}

func (c *comparer) categories(a, b *Category) int {
	if r := c.text(a.Name, b.Name); r != 0 {
		return r
	}
	return strings.Compare(a.ID, b.ID)
}

// extractCovers — по одному не-видео URL на пару category/project,
// в порядке отсортированных ключей.
func extractCovers(sortedKeys []string, assets map[string]string) []string {
	seen := make(map[string]bool)
	var covers []string
	for _, k := range sortedKeys {
		src := assets[k]
		if media.IsVideoURL(src) {
			continue
		}
		m := coverKey.FindStringSubmatch(strings.ReplaceAll(k, `\`, "/"))
		if m == nil {
			continue
		}
		pair := m[1] + "/" + m[2]
		if seen[pair] {
			continue
		}
		seen[pair] = true
		covers = append(covers, src)
	}
	return covers
}
