package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/parkinglot/internal/memory"
	"github.com/mesh-intelligence/parkinglot/pkg/types"
)

func newTestInterpreter(t *testing.T, opts ...InterpreterOption) (*Interpreter, *bytes.Buffer) {
	t.Helper()
	reg := memory.NewRegistry()
	t.Cleanup(func() { _ = reg.Close() })
	var out bytes.Buffer
	return NewInterpreter(reg, &out, opts...), &out
}

func TestInterpreter_Scenario(t *testing.T) {
	in, out := newTestInterpreter(t)

	for _, line := range []string{
		"add 1 public",
		"add 2 private",
		"snapshot",
		"occupy 1",
		"snapshot",
		"public 1",
	} {
		require.NoError(t, in.Exec(line), line)
	}

	err := in.Exec("public 2")
	require.ErrorIs(t, err, types.ErrNotPublic)

	err = in.Exec("add 1 private")
	require.ErrorIs(t, err, types.ErrDuplicateID)

	require.NoError(t, in.Exec("remove 2"))
	err = in.Exec("find 2")
	require.ErrorIs(t, err, types.ErrNotFound)
	require.NoError(t, in.Exec("snapshot"))

	want := strings.Join([]string{
		"added space 1: public, free",
		"added space 2: private, free",
		"1: free",
		"2: free",
		"space 1: public, occupied",
		"1: occupied",
		"2: free",
		"space 1: public, occupied",
		"removed space 2",
		"1: occupied",
	}, "\n") + "\n"
	assert.Equal(t, want, out.String())
}

func TestInterpreter_JSON(t *testing.T) {
	in, out := newTestInterpreter(t, WithJSON(true))

	require.NoError(t, in.Exec("add 2 private"))
	require.NoError(t, in.Exec("add 1 public"))
	require.NoError(t, in.Exec("occupy 1"))
	out.Reset()

	require.NoError(t, in.Exec("snapshot"))
	assert.Equal(t, `{"1":true,"2":false}`+"\n", out.String())
	out.Reset()

	require.NoError(t, in.Exec("find 2"))
	assert.Equal(t, `{"space_id":2,"is_public":false,"is_occupied":false}`+"\n", out.String())
	out.Reset()

	require.NoError(t, in.Exec("list occupied"))
	assert.Equal(t, `[{"space_id":1,"is_public":true,"is_occupied":true}]`+"\n", out.String())
	out.Reset()

	require.NoError(t, in.Exec("remove 2"))
	assert.Equal(t, `{"removed":2}`+"\n", out.String())
}

func TestInterpreter_List(t *testing.T) {
	in, out := newTestInterpreter(t)
	require.NoError(t, in.Exec("add 3 public"))
	require.NoError(t, in.Exec("add 1 private"))
	require.NoError(t, in.Exec("add 2 public"))
	require.NoError(t, in.Exec("occupy 3"))
	out.Reset()

	require.NoError(t, in.Exec("list"))
	assert.Equal(t, "space 1: private, free\nspace 2: public, free\nspace 3: public, occupied\n", out.String())
	out.Reset()

	require.NoError(t, in.Exec("list public free"))
	assert.Equal(t, "space 2: public, free\n", out.String())
}

func TestInterpreter_UsageErrors(t *testing.T) {
	in, out := newTestInterpreter(t)

	for _, line := range []string{
		"add",
		"add x public",
		"add 1 shared",
		"remove",
		"occupy 1 2",
		"find abc",
		"snapshot now",
		"list everything",
		"park 1",
	} {
		t.Run(line, func(t *testing.T) {
			assert.ErrorIs(t, in.Exec(line), errUsage)
		})
	}
	assert.Empty(t, out.String())
}

func TestInterpreter_SkipsBlankAndComments(t *testing.T) {
	in, out := newTestInterpreter(t)
	require.NoError(t, in.Exec(""))
	require.NoError(t, in.Exec("   "))
	require.NoError(t, in.Exec("# add 1 public"))
	assert.Empty(t, out.String())
}

func TestInterpreter_Run(t *testing.T) {
	t.Run("stops at first error", func(t *testing.T) {
		in, out := newTestInterpreter(t)
		var errOut bytes.Buffer
		script := "add 1 public\n\nadd 1 private\nadd 2 private\n"

		err := in.Run(strings.NewReader(script), &errOut, "", false)
		require.ErrorIs(t, err, types.ErrDuplicateID)
		assert.Contains(t, err.Error(), "line 3")
		assert.Equal(t, "added space 1: public, free\n", out.String())
	})

	t.Run("keeps going and prompts", func(t *testing.T) {
		in, out := newTestInterpreter(t)
		var errOut bytes.Buffer
		script := "find 9\nadd 9 public\n"

		err := in.Run(strings.NewReader(script), &errOut, "> ", true)
		require.NoError(t, err)
		assert.Equal(t, "added space 9: public, free\n", out.String())
		assert.Contains(t, errOut.String(), "error: parking space 9: space does not exist")
		assert.Equal(t, 3, strings.Count(errOut.String(), "> "))
	})

	t.Run("overlong line is one failed command", func(t *testing.T) {
		in, out := newTestInterpreter(t)
		var errOut bytes.Buffer
		script := strings.Repeat("x", 200*1024) + "\nadd 1 public\n"

		require.NoError(t, in.Run(strings.NewReader(script), &errOut, "", true))
		assert.Equal(t, "added space 1: public, free\n", out.String())
		assert.Equal(t, 1, strings.Count(errOut.String(), "error:"))
	})

	t.Run("last line without newline", func(t *testing.T) {
		in, out := newTestInterpreter(t)
		var errOut bytes.Buffer

		require.NoError(t, in.Run(strings.NewReader("add 2 private\r\nfind 2"), &errOut, "", false))
		assert.Equal(t, "added space 2: private, free\nspace 2: private, free\n", out.String())
	})

	t.Run("quit ends the session", func(t *testing.T) {
		in, out := newTestInterpreter(t)
		var errOut bytes.Buffer
		script := "add 1 public\nquit\nadd 2 public\n"

		require.NoError(t, in.Run(strings.NewReader(script), &errOut, "", false))
		assert.Equal(t, "added space 1: public, free\n", out.String())
	})
}
