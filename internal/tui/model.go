package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ragsum/internal/domain"
	"ragsum/internal/pipeline"
	"ragsum/internal/tokenize"
)

const queryTopK = 10

// Querier re-ranks the chunks of the last pipeline run.
type Querier interface {
	Query(query string, topK int) []domain.RetrievedChunk
}

// Model is the Bubble Tea model for browsing a summarization result.
type Model struct {
	querier   Querier
	result    *pipeline.Result
	input     textinput.Model
	viewport  viewport.Model
	results   []domain.RetrievedChunk
	status    string
	cursor    int
	ready     bool
	width     int
	lastQuery string
}

// New creates a TUI model showing res. The retrieved chunks of res are
// listed until the user issues a query of their own.
func New(querier Querier, res *pipeline.Result) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a query and press Enter to re-rank chunks"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	status := fmt.Sprintf("%d chunks, %d retrieved. Up/Down to browse, Esc to quit.", len(res.Chunks), len(res.Retrieved))
	return Model{
		querier:  querier,
		result:   res,
		input:    ti,
		viewport: vp,
		results:  res.Retrieved,
		status:   status,
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height), nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if q := strings.TrimSpace(m.input.Value()); q != "" {
				return m.search(q), nil
			}
		case tea.KeyDown:
			return m.move(1), nil
		case tea.KeyUp:
			return m.move(-1), nil
		case tea.KeyPgDown, tea.KeyPgUp:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) resize(width, height int) Model {
	m.ready = true
	m.width = width
	_, boxFrame := resultBoxStyle.GetFrameSize()
	_, inputFrame := queryBoxStyle.GetFrameSize()
	// header, results box, query box, status line and one spacer
	free := height - lipgloss.Height(m.renderHeader()) - inputFrame - 2
	m.viewport.Width = max(20, width)
	m.viewport.Height = max(3, free-boxFrame)
	m.viewport.SetContent(m.renderCurrentResult())
	return m
}

func (m Model) search(q string) Model {
	m.results = m.querier.Query(q, queryTopK)
	m.cursor = 0
	m.lastQuery = q
	m.status = fmt.Sprintf("Results for %q", q)
	if len(m.results) == 0 {
		m.status = "No indexed chunks to search."
	}
	m.viewport.SetContent(m.renderCurrentResult())
	return m
}

// move shifts the cursor by delta, wrapping around the result list.
func (m Model) move(delta int) Model {
	n := len(m.results)
	if n == 0 {
		return m
	}
	m.cursor = ((m.cursor+delta)%n + n) % n
	m.viewport.SetContent(m.renderCurrentResult())
	return m
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return m.renderHeader() + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("RAG Summarizer") + "  " + sourceStyle.Render("["+string(m.result.Source)+"]")
	summaryWidth := max(20, m.width-2)
	summary := summaryStyle.Width(summaryWidth).Render(m.result.Summary)
	s := m.result.Stats
	stats := statsStyle.Render(fmt.Sprintf(
		"%d -> %d characters (%s shorter), %d -> %d words (%s fewer)",
		s.OriginalCharacters, s.SummaryCharacters, s.CompressionRatio,
		s.OriginalWords, s.SummaryWords, s.WordReduction,
	))
	return title + "\n" + summary + "\n" + stats
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	r := m.results[m.cursor]
	title := fmt.Sprintf("Chunk %d  (%d/%d)  score=%.3f", r.Index, m.cursor+1, len(m.results), r.Score)
	body := highlightBestSentence(r.Text, m.lastQuery)
	return title + "\n\n" + body
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	statsStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// highlightBestSentence emphasizes the sentence sharing the most distinct
// words with query. The first sentence wins ties; nothing is emphasized when
// no sentence shares a word.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := tokenize.Sentences(text)
	terms := wordSet(query)
	best, bestShared := -1, 0
	for i, sent := range sentences {
		if shared := sharedWords(terms, sent); shared > bestShared {
			best, bestShared = i, shared
		}
	}
	if best >= 0 {
		sentences[best] = highlightStyle.Render(sentences[best])
	}
	return strings.Join(sentences, " ")
}

func wordSet(s string) map[string]struct{} {
	words := tokenize.Words(s)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// sharedWords counts the distinct words of sentence that appear in terms.
func sharedWords(terms map[string]struct{}, sentence string) int {
	if len(terms) == 0 {
		return 0
	}
	n := 0
	for w := range wordSet(sentence) {
		if _, ok := terms[w]; ok {
			n++
		}
	}
	return n
}
