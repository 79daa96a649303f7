// cdn-inspect — TUI сверка манифеста с бакетом.
//
// Показывает записи манифеста, объекты которых пропали из хранилища,
// внешние URL (старый CDN) и объекты без записи в манифесте.
//
// Использование:
//
//	./cdn-inspect
//	./cdn-inspect -config path/to/config.yaml -prefix image/upload
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"

	"github.com/ilkoid/pixelbros-assets/internal/inspect"
	"github.com/ilkoid/pixelbros-assets/pkg/config"
	"github.com/ilkoid/pixelbros-assets/pkg/manifest"
	"github.com/ilkoid/pixelbros-assets/pkg/s3storage"
	"github.com/ilkoid/pixelbros-assets/pkg/utils"
)

// --- Стили ---
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")). // Зеленый
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// --- Сообщения (Messages) ---
type errMsg error
type reportMsg inspect.Report

// --- Модель ---
type model struct {
	client   *s3storage.Client
	manifest manifest.Manifest
	prefix   string

	spinner  spinner.Model
	viewport viewport.Model
	report   *inspect.Report
	width    int

	loading bool
	err     error
	ready   bool
}

func initialModel(client *s3storage.Client, m manifest.Manifest, prefix string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		client:   client,
		manifest: m,
		prefix:   prefix,
		spinner:  s,
		loading:  true,
	}
}

// Init запускает спиннер и загрузку списка объектов
func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		fetchReport(m.client, m.manifest, m.prefix),
	)
}

// Update - обработка событий
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if !m.loading {
				m.loading = true
				return m, tea.Batch(m.spinner.Tick, fetchReport(m.client, m.manifest, m.prefix))
			}
		}

	case errMsg:
		m.err = msg
		m.loading = false
		return m, nil

	case reportMsg:
		m.loading = false
		r := inspect.Report(msg)
		m.report = &r
		m.viewport.SetContent(formatReport(r, m.width))
		return m, nil

	case tea.WindowSizeMsg:
		headerHeight := 2
		verticalMarginHeight := 2
		m.width = msg.Width

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-verticalMarginHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - verticalMarginHeight
		}
		if m.report != nil {
			m.viewport.SetContent(formatReport(*m.report, m.width))
		}
	}

	if m.loading {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View - отрисовка
func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("\n❌ Error: %v\n\nPress 'q' to quit.", m.err)
	}

	if m.loading {
		return fmt.Sprintf("\n %s Listing bucket and comparing with manifest...\n\n", m.spinner.View())
	}

	header := titleStyle.Render("📦 CDN Manifest Inspector")
	return fmt.Sprintf("%s\n%s\n\n(q quit, r refresh, arrows to scroll)", header, m.viewport.View())
}

// --- Commands ---

func fetchReport(client *s3storage.Client, m manifest.Manifest, prefix string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		objects, err := client.ListFiles(ctx, prefix)
		if err != nil {
			return errMsg(err)
		}
		utils.Info("Bucket listed", "prefix", prefix, "objects", len(objects))
		return reportMsg(inspect.Compare(m, objects, client.URL("")))
	}
}

// formatReport — текст для вьюпорта, длинные строки обрезаются по ширине.
func formatReport(r inspect.Report, width int) string {
	if width <= 0 {
		width = 120
	}
	line := func(s string) string {
		return truncate.StringWithTail(s, uint(width), "…") + "\n"
	}

	var b strings.Builder
	b.WriteString(line(fmt.Sprintf("%s %d present (%s)   %s %d missing   %s %d external   %d orphans",
		okStyle.Render("●"), len(r.Present), humanize.Bytes(uint64(r.Bytes)),
		badStyle.Render("●"), len(r.Missing),
		mutedStyle.Render("●"), len(r.External),
		len(r.Orphans))))
	b.WriteString("\n")

	if len(r.Missing) > 0 {
		b.WriteString(sectionStyle.Render("Missing in bucket") + "\n")
		for _, e := range r.Missing {
			b.WriteString(line(fmt.Sprintf("%s %s  %s", badStyle.Render("✗"), e.Key, mutedStyle.Render(e.ObjectKey))))
		}
		b.WriteString("\n")
	}

	if len(r.External) > 0 {
		b.WriteString(sectionStyle.Render("External URLs") + "\n")
		for _, e := range r.External {
			b.WriteString(line(fmt.Sprintf("~ %s  %s", e.Key, mutedStyle.Render(e.URL))))
		}
		b.WriteString("\n")
	}

	if len(r.Orphans) > 0 {
		b.WriteString(sectionStyle.Render("Not referenced by manifest") + "\n")
		for _, key := range r.Orphans {
			b.WriteString(line("? " + key))
		}
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Present") + "\n")
	for _, e := range r.Present {
		b.WriteString(line(fmt.Sprintf("%s %-10s %s", okStyle.Render("✓"), humanize.Bytes(uint64(e.Size)), e.Key)))
	}
	return b.String()
}

// --- Main ---

func main() {
	var (
		configPath = flag.String("config", "", "Path to config.yaml (default: ./config.yaml)")
		prefix     = flag.String("prefix", "", "Only list objects under this key prefix")
	)
	flag.Parse()

	cfg, err := config.Load(config.FindConfigPath(*configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config Error: %v\n", err)
		os.Exit(1)
	}

	if err := utils.InitLogger(cfg.App.LogDir, "cdn-inspect"); err != nil {
		fmt.Fprintf(os.Stderr, "Logger Error: %v\n", err)
	}
	defer utils.Close()
	utils.SetDebug(cfg.App.Debug)

	m, err := manifest.Load(cfg.Assets.ManifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Manifest Error: %v\n", err)
		os.Exit(1)
	}

	client, err := s3storage.New(cfg.S3)
	if err != nil {
		fmt.Fprintf(os.Stderr, "S3 Init Error: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(client, m, *prefix), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
