// Command scrolldemo hosts a recycle.Engine inside a bubbletea program:
// a million-row list scrolled with vim keys or the mouse wheel, rendered
// through a handful of pooled row instances.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"recycle"
)

var (
	itemCount = flag.Int("items", 1_000_000, "number of synthetic items")
	dataFile  = flag.String("data", "", "load items from a JSON file instead")
	debugLog  = flag.Bool("debug", false, "write engine diagnostics to scrolldemo.log")
)

const (
	typeHeader recycle.TypeID = iota
	typeLine
	typeCard
)

// entry is the record payload carried in Item.Data.
type entry struct {
	Kind  string `json:"kind"` // header, line or card
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("24"))
	lineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	cardStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	cardDimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("236")).Background(lipgloss.Color("252"))
	thumbStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	trackStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// row is the visual instance for all three item types: a block of
// pre-rendered lines positioned at a whole-row offset.
type row struct {
	lines []string
	top   int
	index int
}

func newRow() recycle.Instance { return &row{index: -1} }

func (r *row) Bind(item recycle.Item, index int) error {
	e, ok := item.Data.(*entry)
	if !ok {
		return fmt.Errorf("unexpected payload %T", item.Data)
	}
	r.index = index
	r.lines = r.lines[:0]
	switch item.Type {
	case typeHeader:
		r.lines = append(r.lines, headerStyle.Render(" "+e.Title+" "))
	case typeCard:
		r.lines = append(r.lines,
			cardStyle.Render("┌ "+e.Title),
			cardStyle.Render("│ ")+cardDimStyle.Render(e.Body),
			cardStyle.Render("└ ")+cardDimStyle.Render(fmt.Sprintf("#%d", index)),
		)
	default:
		r.lines = append(r.lines, lineStyle.Render(fmt.Sprintf("%7d  %s", index, e.Title)))
	}
	return nil
}

func (r *row) Place(offset, extent float64) {
	r.top = int(offset)
	_ = extent // always matches len(r.lines) for these templates
}

func (r *row) Unbind() {
	r.index = -1
	r.lines = r.lines[:0]
}

type keymap struct {
	Up, Down      key.Binding
	HalfUp        key.Binding
	HalfDown      key.Binding
	Top, Bottom   key.Binding
	Refresh, Quit key.Binding
}

func defaultKeymap() keymap {
	return keymap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		HalfUp:   key.NewBinding(key.WithKeys("u", "ctrl+u"), key.WithHelp("u", "half page up")),
		HalfDown: key.NewBinding(key.WithKeys("d", "ctrl+d"), key.WithHelp("d", "half page down")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type model struct {
	engine *recycle.Engine
	keys   keymap

	width, height int
	status        string
}

func (m *model) viewportRows() int {
	return max(1, m.height-1) // one row reserved for the status bar
}

func (m *model) Init() tea.Cmd { return tick() }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.engine.Tick()
		return m, tick()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.engine.OnViewportResized(float64(m.viewportRows()))
		return m, nil

	case tea.MouseMsg:
		switch {
		case msg.Button == tea.MouseButtonWheelUp:
			m.engine.ScrollBy(-3)
		case msg.Button == tea.MouseButtonWheelDown:
			m.engine.ScrollBy(3)
		case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
			m.clickAt(msg.Y)
		}
		return m, nil

	case tea.KeyMsg:
		half := float64(m.viewportRows()) / 2
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.engine.ScrollBy(-1)
		case key.Matches(msg, m.keys.Down):
			m.engine.ScrollBy(1)
		case key.Matches(msg, m.keys.HalfUp):
			m.engine.ScrollBy(-half)
		case key.Matches(msg, m.keys.HalfDown):
			m.engine.ScrollBy(half)
		case key.Matches(msg, m.keys.Top):
			m.engine.ScrollTo(0)
		case key.Matches(msg, m.keys.Bottom):
			m.engine.ScrollToIndex(m.engine.Len() - 1)
		case key.Matches(msg, m.keys.Refresh):
			m.engine.Refresh()
		}
		return m, nil
	}
	return m, nil
}

// clickAt resolves the screen row to the instance covering it and lets the
// engine notify the click subscriber.
func (m *model) clickAt(y int) {
	target := int(m.engine.Scroll()) + y
	first, last := m.engine.Window()
	for i := first; i <= last; i++ {
		r, ok := m.engine.Bound(i).(*row)
		if !ok {
			continue
		}
		if target >= r.top && target < r.top+len(r.lines) {
			m.engine.NotifyClicked(r)
			return
		}
	}
}

func (m *model) View() string {
	rows := m.viewportRows()
	if m.width == 0 {
		return ""
	}

	var b strings.Builder
	if m.engine.Building() {
		for y := 0; y < rows/2; y++ {
			b.WriteByte('\n')
		}
		b.WriteString(fmt.Sprintf("  building positions… %3.0f%%", m.engine.Progress()*100))
		for y := rows / 2; y < rows; y++ {
			b.WriteByte('\n')
		}
		b.WriteString(m.statusBar())
		return b.String()
	}

	lines := make([]string, rows)
	scroll := int(m.engine.Scroll())
	first, last := m.engine.Window()
	for i := first; i <= last; i++ {
		r, ok := m.engine.Bound(i).(*row)
		if !ok {
			continue
		}
		for n, line := range r.lines {
			y := r.top + n - scroll
			if y >= 0 && y < rows {
				lines[y] = line
			}
		}
	}

	// Scrollbar along the right edge.
	size, pos := m.engine.ScrollMetrics()
	thumbLen := max(1, int(size*float64(rows)))
	thumbTop := int(pos * float64(rows-thumbLen))
	for y := range lines {
		pad := m.width - 1 - lipgloss.Width(lines[y])
		if pad > 0 {
			lines[y] += strings.Repeat(" ", pad)
		}
		if y >= thumbTop && y < thumbTop+thumbLen {
			lines[y] += thumbStyle.Render("┃")
		} else {
			lines[y] += trackStyle.Render("│")
		}
	}

	b.WriteString(strings.Join(lines, "\n"))
	b.WriteByte('\n')
	b.WriteString(m.statusBar())
	return b.String()
}

func (m *model) statusBar() string {
	first, last := m.engine.Window()
	s := fmt.Sprintf(" %d items │ window [%d,%d] │ offset %.0f/%.0f │ %s ",
		m.engine.Len(), first, last, m.engine.Scroll(), m.engine.TotalExtent(), m.status)
	return statusStyle.Render(s)
}

func loadItems() ([]recycle.Item, error) {
	if *dataFile != "" {
		raw, err := os.ReadFile(*dataFile)
		if err != nil {
			return nil, err
		}
		var entries []entry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, err
		}
		items := make([]recycle.Item, len(entries))
		for i := range entries {
			items[i] = recycle.Item{Type: typeForKind(entries[i].Kind), Data: &entries[i]}
		}
		return items, nil
	}

	items := make([]recycle.Item, *itemCount)
	for i := range items {
		switch {
		case i%50 == 0:
			items[i] = recycle.Item{Type: typeHeader, Data: &entry{
				Kind:  "header",
				Title: fmt.Sprintf("Section %d", i/50+1),
			}}
		case i%50 == 25:
			items[i] = recycle.Item{Type: typeCard, Data: &entry{
				Kind:  "card",
				Title: fmt.Sprintf("Card %d", i),
				Body:  "the quick brown fox jumps over the lazy dog",
			}}
		default:
			items[i] = recycle.Item{Type: typeLine, Data: &entry{
				Kind:  "line",
				Title: fmt.Sprintf("row %d — lorem ipsum dolor sit amet", i),
			}}
		}
	}
	return items, nil
}

func typeForKind(kind string) recycle.TypeID {
	switch kind {
	case "header":
		return typeHeader
	case "card":
		return typeCard
	default:
		return typeLine
	}
}

func main() {
	flag.Parse()

	logger := zap.NewNop()
	if *debugLog {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"scrolldemo.log"}
		l, err := cfg.Build()
		if err != nil {
			log.Fatal(err)
		}
		logger = l
		defer logger.Sync()
	}

	opts := recycle.DefaultOptions()
	opts.ViewBuffer = 4
	opts.Logger = logger

	engine := recycle.New(opts).
		Register(typeHeader, recycle.Registration{New: newRow, DefaultExtent: 1}).
		Register(typeLine, recycle.Registration{New: newRow, DefaultExtent: 1}).
		Register(typeCard, recycle.Registration{New: newRow, DefaultExtent: 3})

	m := &model{engine: engine, keys: defaultKeymap(), status: "click a row"}
	engine.OnClick(func(index int) {
		if it, ok := engine.ItemAt(index); ok {
			m.status = fmt.Sprintf("clicked #%d: %s", index, it.Data.(*entry).Title)
		}
	})

	items, err := loadItems()
	if err != nil {
		log.Fatal(err)
	}
	engine.Prewarm(typeLine, 32)
	engine.SetData(items)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}
