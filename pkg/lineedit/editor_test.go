package lineedit

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Torchwoods/znp-host-framework/pkg/registry"
)

// fakeConsole replays scripted keys and records output.
type fakeConsole struct {
	keys   []byte
	out    bytes.Buffer
	clears int
}

func (f *fakeConsole) ReadKey() (byte, error) {
	if len(f.keys) == 0 {
		return 0, io.EOF
	}
	k := f.keys[0]
	f.keys = f.keys[1:]
	return k, nil
}

func (f *fakeConsole) Write(p []byte) (int, error) { return f.out.Write(p) }

func (f *fakeConsole) ClearLine() error {
	f.clears++
	return nil
}

func (f *fakeConsole) feed(s string) { f.keys = append(f.keys, s...) }

type fakeSource []*registry.Command

func (s fakeSource) ByPrefix(prefix string) []*registry.Command {
	var out []*registry.Command
	for _, c := range s {
		if strings.HasPrefix(c.Name, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func newSource() fakeSource {
	return fakeSource{
		{Index: 0, Name: "SYS_PING", Description: "This command issues PING requests."},
		{Index: 1, Name: "SYS_RESET_REQ", Description: "Reset the target.", Fields: []registry.Field{{Name: "Type", Size: 1}}},
		{Index: 2, Name: "AB_ONE", Description: "first"},
		{Index: 3, Name: "AB_TWO", Description: "second"},
	}
}

const (
	tab   = "\t"
	enter = "\r"
	up    = "\x1b[A"
	down  = "\x1b[B"
	right = "\x1b[C"
	left  = "\x1b[D"
)

func newEditor(con *fakeConsole) *Editor {
	return NewEditor(con, newSource(), NewHistory(4), Options{})
}

// step feeds keys one at a time without submitting.
func step(t *testing.T, e *Editor, con *fakeConsole, keys string) {
	t.Helper()
	con.feed(keys)
	for len(con.keys) > 0 {
		k, _ := con.ReadKey()
		cmd, err := e.handleKey(k)
		require.NoError(t, err)
		require.Nil(t, cmd, "unexpected submission")
	}
}

func TestCompletionUniqueThenDescription(t *testing.T) {
	con := &fakeConsole{}
	e := newEditor(con)

	step(t, e, con, "SYS_P"+tab)
	assert.Equal(t, "SYS_PING", e.Line())
	assert.Equal(t, 8, e.Cursor())
	assert.Equal(t, Completing, e.State())
	assert.NotContains(t, con.out.String(), "Description")

	step(t, e, con, tab)
	assert.Equal(t, "SYS_PING", e.Line(), "second tab must not change the line")
	assert.Contains(t, con.out.String(), "Description:\nThis command issues PING requests.")
}

func TestCompletionAmbiguousThenList(t *testing.T) {
	con := &fakeConsole{}
	e := newEditor(con)

	step(t, e, con, "AB_"+tab)
	assert.Equal(t, "AB_", e.Line())
	assert.NotContains(t, con.out.String(), "AB_ONE")

	step(t, e, con, tab)
	assert.Equal(t, "AB_", e.Line())
	out := con.out.String()
	assert.Contains(t, out, "AB_ONE")
	assert.Contains(t, out, "AB_TWO")
}

func TestCompletionExtendsCommonPrefix(t *testing.T) {
	con := &fakeConsole{}
	e := newEditor(con)

	step(t, e, con, "A"+tab)
	assert.Equal(t, "AB_", e.Line())
}

func TestEditBetweenTabsResetsDoubleTab(t *testing.T) {
	con := &fakeConsole{}
	e := newEditor(con)

	step(t, e, con, "AB_"+tab+"O"+string(rune(readline.CharBackspace))+tab)
	assert.NotContains(t, con.out.String(), "AB_ONE", "edit between presses makes the next tab a first press")
}

func TestTripleTabIsFirstPressAgain(t *testing.T) {
	con := &fakeConsole{}
	e := newEditor(con)

	step(t, e, con, "AB_"+tab+tab)
	listed := strings.Count(con.out.String(), "AB_ONE")
	step(t, e, con, tab)
	assert.Equal(t, listed, strings.Count(con.out.String(), "AB_ONE"))
}

func TestSubmitExactMatch(t *testing.T) {
	con := &fakeConsole{}
	e := newEditor(con)
	con.feed("SYS_PING" + enter)

	cmd, err := e.ReadCommand()
	require.NoError(t, err)
	assert.Equal(t, "SYS_PING", cmd.Name)
	assert.Equal(t, Submitted, e.State())
	assert.Equal(t, []string{"SYS_PING"}, e.History().Entries())
	assert.True(t, strings.HasPrefix(con.out.String(), DefaultHeader+"\n"))
}

func TestSubmitPartialRestarts(t *testing.T) {
	con := &fakeConsole{}
	e := newEditor(con)
	con.feed("SYS_P" + enter + "AB_" + enter + "NOPE" + enter + "AB_TWO" + enter)

	cmd, err := e.ReadCommand()
	require.NoError(t, err)
	assert.Equal(t, "AB_TWO", cmd.Name)
	assert.Equal(t, []string{"AB_TWO"}, e.History().Entries(), "only accepted commands are recorded")
	assert.Equal(t, 4, strings.Count(con.out.String(), DefaultHeader))
}

func TestSubmitDuplicateSuppressed(t *testing.T) {
	con := &fakeConsole{}
	e := newEditor(con)

	for _, line := range []string{"SYS_PING", "SYS_PING", "AB_ONE", "SYS_PING"} {
		con.feed(line + enter)
		_, err := e.ReadCommand()
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"SYS_PING", "AB_ONE", "SYS_PING"}, e.History().Entries())
}

func TestHistoryNavigation(t *testing.T) {
	con := &fakeConsole{}
	e := newEditor(con)
	e.History().Load([]string{"AB_ONE", "AB_TWO"})

	e.resetLine()
	step(t, e, con, "SY")

	step(t, e, con, up)
	assert.Equal(t, "AB_TWO", e.Line())
	assert.Equal(t, NavigatingHistory, e.State())

	step(t, e, con, up)
	assert.Equal(t, "AB_ONE", e.Line())

	step(t, e, con, up)
	assert.Equal(t, "AB_ONE", e.Line(), "oldest entry is a floor")

	step(t, e, con, down+down)
	assert.Equal(t, "SY", e.Line(), "in-progress line restored past the newest entry")
	assert.Equal(t, Collecting, e.State())

	step(t, e, con, down)
	assert.Equal(t, "SY", e.Line())

	assert.Equal(t, []string{"AB_ONE", "AB_TWO"}, e.History().Entries(), "navigation never mutates history")
}

func TestHistoryEditedRecallDoesNotMutate(t *testing.T) {
	con := &fakeConsole{}
	e := newEditor(con)
	e.History().Load([]string{"AB_ONE"})
	e.resetLine()

	step(t, e, con, up+"X")
	assert.Equal(t, "AB_ONEX", e.Line())
	step(t, e, con, down+up)
	assert.Equal(t, "AB_ONE", e.Line())
	assert.Equal(t, []string{"AB_ONE"}, e.History().Entries())
}

func TestCursorMovementAndInsert(t *testing.T) {
	con := &fakeConsole{}
	e := newEditor(con)
	e.resetLine()

	step(t, e, con, "SYS_PNG")
	step(t, e, con, left+left)
	assert.Equal(t, 5, e.Cursor())
	step(t, e, con, "I")
	assert.Equal(t, "SYS_PING", e.Line())
	assert.Equal(t, 6, e.Cursor())

	step(t, e, con, left+left+left+left+left+left+left+left+left)
	assert.Equal(t, 0, e.Cursor(), "left stops at column 0")

	step(t, e, con, strings.Repeat(right, 20))
	assert.Equal(t, 8, e.Cursor(), "right stops at end of line")
}

func TestBackspaceAtCursor(t *testing.T) {
	con := &fakeConsole{}
	e := newEditor(con)
	e.resetLine()

	bs := string(rune(readline.CharBackspace))
	step(t, e, con, "SYS_PIXNG"+left+left+bs)
	assert.Equal(t, "SYS_PING", e.Line())
	assert.Equal(t, 6, e.Cursor())

	step(t, e, con, strings.Repeat(bs, 10))
	assert.Equal(t, "NG", e.Line())
	assert.Equal(t, 0, e.Cursor())
}

func TestHomeEndAndKill(t *testing.T) {
	con := &fakeConsole{}
	e := newEditor(con)
	e.resetLine()

	step(t, e, con, "AB_ONE\x1b[H")
	assert.Equal(t, 0, e.Cursor())
	step(t, e, con, "\x1b[F")
	assert.Equal(t, 6, e.Cursor())
	step(t, e, con, "\x1bOD")
	assert.Equal(t, 5, e.Cursor())
	step(t, e, con, string(rune(readline.CharCtrlU)))
	assert.Equal(t, "", e.Line())
}

func TestForwardDelete(t *testing.T) {
	con := &fakeConsole{}
	e := newEditor(con)
	e.resetLine()

	step(t, e, con, "AB_XONE"+left+left+left+left+"\x1b[3~")
	assert.Equal(t, "AB_ONE", e.Line())
}

func TestControlKeysIgnored(t *testing.T) {
	con := &fakeConsole{}
	e := newEditor(con)
	e.resetLine()

	step(t, e, con, "AB\x07\x00_ONE")
	assert.Equal(t, "AB_ONE", e.Line())
}

func TestInterruptAndEOF(t *testing.T) {
	con := &fakeConsole{}
	e := newEditor(con)
	con.feed("AB" + string(rune(readline.CharInterrupt)))
	_, err := e.ReadCommand()
	assert.Equal(t, readline.ErrInterrupt, err)

	con = &fakeConsole{}
	e = newEditor(con)
	con.feed(string(rune(readline.CharDelete)))
	_, err = e.ReadCommand()
	assert.Equal(t, io.EOF, err)

	con = &fakeConsole{}
	e = newEditor(con)
	_, err = e.ReadCommand()
	assert.Equal(t, io.EOF, err, "closed input ends the session")
}

func TestRedrawParksCursor(t *testing.T) {
	con := &fakeConsole{}
	e := NewEditor(con, newSource(), nil, Options{Prompt: "> "})
	e.resetLine()

	step(t, e, con, "AB_ONE"+left+left)
	assert.True(t, strings.HasSuffix(con.out.String(), "> AB_ONE\x1b[2D"))
	assert.Greater(t, con.clears, 0)
}

func TestHelpStyleApplied(t *testing.T) {
	con := &fakeConsole{}
	e := NewEditor(con, newSource(), nil, Options{Help: func(s string) string { return "<" + s + ">" }})
	e.resetLine()

	step(t, e, con, "SYS_PING"+tab+tab)
	assert.Contains(t, con.out.String(), "<\n\nDescription:")
}

func TestColumns(t *testing.T) {
	names := []string{"AAAA", "BB", "CCC", "D"}
	assert.Equal(t, "AAAA  BB\nCCC   D", columns(names, 12))
	assert.Equal(t, "AAAA\nBB\nCCC\nD", columns(names, 4))
	assert.Equal(t, "AAAA  BB    CCC   D", columns(names, 80))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Collecting", Collecting.String())
	assert.Equal(t, "Completing", Completing.String())
	assert.Equal(t, "NavigatingHistory", NavigatingHistory.String())
	assert.Equal(t, "Submitted", Submitted.String())
}
