// Package render draws a tree snapshot as a nested list for terminals.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltree "github.com/charmbracelet/lipgloss/tree"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/brettbedarf/foldertree/tree"
)

// TrashLabel heads the trash section of a rendered tree
const TrashLabel = "trash"

var (
	enumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).PaddingRight(1)
	folderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	rootStyle   = lipgloss.NewStyle().Bold(true)
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Render draws the folder region followed by the trash section. The trash
// section is omitted while the trash is empty.
func Render(snap tree.TreeSnapshot) string {
	var b strings.Builder
	b.WriteString(Folders(snap.Root))
	if len(snap.Trash) > 0 {
		b.WriteString("\n\n")
		b.WriteString(Trash(snap.Trash))
	}
	return b.String()
}

// Folders draws root and its subtree with children sorted by name
func Folders(root tree.Snapshot) string {
	t := ltree.Root(rootStyle.Render(root.Name)).
		Enumerator(ltree.RoundedEnumerator).
		EnumeratorStyle(enumStyle).
		ItemStyle(folderStyle)
	addChildren(t, root.Children)
	return t.String()
}

// Trash draws every trash entry labelled with its key so it can be fed to
// restore or purge, plus where it came from and when.
func Trash(entries []tree.TrashedSnapshot) string {
	t := ltree.Root(rootStyle.Render(TrashLabel)).
		Enumerator(ltree.RoundedEnumerator).
		EnumeratorStyle(enumStyle).
		ItemStyle(folderStyle)
	for _, e := range entries {
		label := EntryLabel(e)
		if len(e.Children) == 0 {
			t.Child(label)
			continue
		}
		sub := ltree.Root(label)
		addChildren(sub, e.Children)
		t.Child(sub)
	}
	return t.String()
}

// EntryLabel is the one-line description of a trash entry
func EntryLabel(e tree.TrashedSnapshot) string {
	return fmt.Sprintf("%s %s",
		keyStyle.Render(e.Key),
		dimStyle.Render(fmt.Sprintf("(from /%s, %s)", e.Origin, humanize.Time(e.TrashedAt))),
	)
}

func addChildren(t *ltree.Tree, children []tree.Snapshot) {
	t.Child(lo.Map(children, func(ch tree.Snapshot, _ int) any {
		if len(ch.Children) == 0 {
			return ch.Name
		}
		sub := ltree.Root(ch.Name)
		addChildren(sub, ch.Children)
		return sub
	})...)
}

// Lines renders root's subtree as slash paths, one per line, depth first.
func Lines(root tree.Snapshot) []string {
	var lines []string
	var visit func(s tree.Snapshot)
	visit = func(s tree.Snapshot) {
		for _, ch := range s.Children {
			lines = append(lines, "/"+ch.Path)
			visit(ch)
		}
	}
	visit(root)
	return lines
}
