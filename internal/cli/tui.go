package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/goalnet/pkg/layout"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// nodeSort is the column the node table is ordered by.
type nodeSort int

const (
	sortImportance nodeSort = iota
	sortID
	sortRole
)

func (s nodeSort) String() string {
	switch s {
	case sortID:
		return "id"
	case sortRole:
		return "role"
	default:
		return "importance"
	}
}

// roleRank orders roles the way the layout places them.
var roleRank = map[layout.Role]int{
	layout.RolePinned:    0,
	layout.RoleRoot:      1,
	layout.RoleConnector: 2,
	layout.RoleOther:     3,
	layout.RoleLeaf:      4,
}

// =============================================================================
// NodeTableModel - Interactive layout browser
// =============================================================================

// NodeTableModel is the bubbletea model for browsing a layout result.
type NodeTableModel struct {
	Result *layout.Result
	Nodes  []layout.PositionedNode
	Sort   nodeSort
	Cursor int
	Height int
	Offset int
}

// NewNodeTableModel creates a node table sorted by importance.
func NewNodeTableModel(res *layout.Result) NodeTableModel {
	m := NodeTableModel{
		Result: res,
		Nodes:  slices.Clone(res.Nodes),
		Height: 15,
	}
	m.sortNodes()
	return m
}

func (m *NodeTableModel) sortNodes() {
	slices.SortStableFunc(m.Nodes, func(a, b layout.PositionedNode) int {
		switch m.Sort {
		case sortRole:
			if c := cmp.Compare(roleRank[a.Role], roleRank[b.Role]); c != 0 {
				return c
			}
		case sortImportance:
			if c := cmp.Compare(b.Importance, a.Importance); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func (m NodeTableModel) Init() tea.Cmd {
	return nil
}

func (m NodeTableModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Nodes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "s":
			m.Sort = (m.Sort + 1) % 3
			m.sortNodes()
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-12, 5)
	}
	return m, nil
}

func (m NodeTableModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Goal Network Layout"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("↑/↓ navigate  s sort (%s)  q quit", m.Sort)))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Nodes))
	b.WriteString(nodeTable(m.Nodes[m.Offset:end], m.Cursor-m.Offset).Render())
	b.WriteString("\n")

	if m.Cursor < len(m.Nodes) {
		b.WriteString(m.edgeSummary(m.Nodes[m.Cursor]))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Nodes)), len(m.Nodes))))

	return b.String()
}

// edgeSummary lists the relationships of one node.
func (m NodeTableModel) edgeSummary(n layout.PositionedNode) string {
	var out, in []string
	for _, e := range m.Result.Edges {
		switch n.ID {
		case e.From:
			out = append(out, fmt.Sprintf("%d (%s)", e.To, e.RelationshipType))
		case e.To:
			in = append(in, fmt.Sprintf("%d (%s)", e.From, e.RelationshipType))
		}
	}
	none := func(s []string) string {
		if len(s) == 0 {
			return "-"
		}
		return strings.Join(s, ", ")
	}
	return listDimStyle.Render("  to:   ") + none(out) + "\n" +
		listDimStyle.Render("  from: ") + none(in) + "\n"
}

// nodeTable renders nodes as a bordered table. cursor < 0 highlights nothing.
func nodeTable(nodes []layout.PositionedNode, cursor int) *table.Table {
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		marker := "  "
		if i == cursor {
			marker = "▸ "
		}
		rows[i] = []string{
			marker,
			fmt.Sprint(n.ID),
			truncate(n.Label, 28),
			string(n.Kind),
			string(n.Role),
			fmt.Sprintf("%.0f", n.X),
			fmt.Sprintf("%.0f", n.Y),
			fmt.Sprint(n.Importance),
			fmt.Sprint(n.Descendants),
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Goal", "Type", "Role", "X", "Y", "Imp", "Desc").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			base := lipgloss.NewStyle()
			if row == cursor {
				return base.Foreground(colorCyan).Bold(true)
			}
			if row < len(nodes) && nodes[row].Pinned {
				return base.Foreground(colorGray)
			}
			return base
		})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
