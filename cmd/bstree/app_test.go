package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/benz9527/xbst/lib/paint"
	"github.com/benz9527/xbst/lib/tree"
	"github.com/benz9527/xbst/xlog"
)

func runArgs(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cfg, err := parseConfig(args, io.Discard)
	require.NoError(t, err)
	out, logOut := &bytes.Buffer{}, &bytes.Buffer{}
	err = runApp(context.Background(), cfg, output{out: out, logOut: logOut})
	return out.String(), logOut.String(), err
}

func TestParseConfig(t *testing.T) {
	cfg, err := parseConfig([]string{"-order", "pre", "-colour", "blue", "3", "1", " 2"}, io.Discard)
	require.NoError(t, err)
	require.Equal(t, []tree.TraversalOrder{tree.PreOrderTraversal}, cfg.orders)
	require.Equal(t, []int{3, 1, 2}, cfg.values)
	require.Equal(t, "text", cfg.logFormat)
	require.False(t, cfg.noAutoBalance)

	cfg, err = parseConfig([]string{"-order", "all", "-no-auto-balance"}, io.Discard)
	require.NoError(t, err)
	require.Len(t, cfg.orders, 3)
	require.Empty(t, cfg.values)
	require.True(t, cfg.noAutoBalance)

	_, err = parseConfig([]string{"-h"}, io.Discard)
	require.ErrorIs(t, err, flag.ErrHelp)

	testcases := []struct {
		name string
		args []string
	}{
		{"order", []string{"-order", "level", "1"}},
		{"painters", []string{"-colour", "red", "-hex", "#FF0000", "1"}},
		{"value", []string{"1", "x", "3"}},
		{"log format", []string{"-log-format", "xml"}},
		{"workers", []string{"-workers", "-1"}},
		{"metrics", []string{"-metrics", "statsd"}},
		{"colour", []string{"-colour", "pink", "1"}},
		{"hex", []string{"-hex", "#zz", "1"}},
		{"rgb", []string{"-rgb", "1,2", "1"}},
		{"log level", []string{"-log-level", "verbose", "1"}},
		{"log time", []string{"-log-time", "unix", "1"}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			_, err := parseConfig(tc.args, io.Discard)
			require.ErrorIs(tt, err, errBstreeInvalidArgs)
		})
	}
}

func TestParseValues(t *testing.T) {
	vals, err := parseValues([]string{"1", "-2", "a", "3", "b"})
	require.ErrorIs(t, err, errBstreeInvalidArgs)
	require.Contains(t, err.Error(), `"a"`)
	require.Contains(t, err.Error(), `"b"`)
	require.Equal(t, []int{1, -2, 3}, vals)
}

func TestConfigPainter(t *testing.T) {
	p, err := (&config{}).parsePainter()
	require.NoError(t, err)
	require.Equal(t, "x", p("x"))

	p, err = (&config{colour: "2"}).parsePainter()
	require.NoError(t, err)
	require.Equal(t, paint.Paint("x", paint.Yellow), p("x"))

	p, err = (&config{rgb: "10, 20,300"}).parsePainter()
	require.NoError(t, err)
	require.Equal(t, paint.PaintRGB("x", 10, 20, 255), p("x"))

	_, err = (&config{rgb: "10,20"}).parsePainter()
	require.ErrorIs(t, err, errBstreeInvalidArgs)
	_, err = (&config{rgb: "a,b,c"}).parsePainter()
	require.ErrorIs(t, err, errBstreeInvalidArgs)
	_, err = (&config{colour: "pink"}).parsePainter()
	require.ErrorIs(t, err, errBstreeInvalidArgs)
	_, err = (&config{hex: "#12"}).parsePainter()
	require.ErrorIs(t, err, paint.ErrPaintInvalidFormat)
	require.ErrorIs(t, err, errBstreeInvalidArgs)
}

func TestRunApp(t *testing.T) {
	out, logOut, err := runArgs(t, "-log-level", "INFO", "5", "3", "8", "1", "4", "7", "9")
	require.NoError(t, err)
	require.Equal(t, "1 , 3 , 4 , 5 , 7 , 8 , 9 , \n", out)
	require.Contains(t, logOut, "[bstree] tree built")

	out, _, err = runArgs(t, "-order", "all", "-log-level", "ERROR", "5", "3", "8", "1", "4", "7", "9")
	require.NoError(t, err)
	require.Equal(t,
		"in-order: 1 , 3 , 4 , 5 , 7 , 8 , 9 , \n"+
			"pre-order: 5 , 3 , 1 , 4 , 8 , 7 , 9 , \n"+
			"post-order: 1 , 4 , 3 , 7 , 9 , 8 , 5 , \n",
		out,
	)

	out, _, err = runArgs(t, "-order", "pre", "-no-auto-balance", "-log-level", "ERROR", "1", "2", "3", "4", "5", "6", "7")
	require.NoError(t, err)
	require.Equal(t, "4 , 2 , 1 , 3 , 6 , 5 , 7 , \n", out)

	out, _, err = runArgs(t, "-colour", "red", "-log-level", "ERROR", "2", "1")
	require.NoError(t, err)
	require.Equal(t, "\033[31m1\033[0m , \033[31m2\033[0m , \n", out)

	out, _, err = runArgs(t, "-hex", "#008080", "-log-level", "ERROR", "7")
	require.NoError(t, err)
	require.Equal(t, "\033[38;2;0;128;128m7\033[0m , \n", out)

	out, _, err = runArgs(t, "-log-level", "ERROR")
	require.NoError(t, err)
	require.Equal(t, "\n", out)
}

func TestRunApp_Workers(t *testing.T) {
	args := []string{"-workers", "4", "-log-level", "ERROR"}
	expected := ""
	for i := 200; i > 0; i-- {
		args = append(args, strconv.Itoa(i))
	}
	for i := 1; i <= 200; i++ {
		expected += strconv.Itoa(i) + valueSeparator
	}
	out, _, err := runArgs(t, args...)
	require.NoError(t, err)
	require.Equal(t, expected+"\n", out)
}

func TestInsertValues(t *testing.T) {
	logger := xlog.NewNopXLogger()
	sorted := tree.NewSyncOrderedTree[int](tree.NewOrderedTree[int]())
	require.NoError(t, insertValues(sorted, []int{3, 1, 2}, 2, logger))
	require.Equal(t, []int{1, 2, 3}, sorted.Values(tree.InOrderTraversal))

	broken, err := tree.NewOrderedTreeFunc[int](func(i, j int) int64 { return 1 })
	require.NoError(t, err)
	require.ErrorIs(t, insertValues(broken, []int{1, 2}, 0, logger), tree.ErrOrderedTreeInvalidComparator)

	broken = tree.NewSyncOrderedTree[int](broken)
	err = insertValues(broken, []int{1, 2, 3}, 2, logger)
	require.ErrorIs(t, err, tree.ErrOrderedTreeInvalidComparator)
	require.Len(t, multierr.Errors(err), 3)
}

func TestRunApp_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bstree.log")
	out, logOut, err := runArgs(t,
		"-log-file", path,
		"-log-format", "json",
		"-log-level", "DEBUG",
		"-log-max-size", "1MB",
		"3", "2", "1",
	)
	require.NoError(t, err)
	require.Equal(t, "1 , 2 , 3 , \n", out)
	require.Empty(t, logOut)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "[bstree] tree built")
	require.Contains(t, string(data), "[ordered-tree] rebuilt after insert")
	require.Contains(t, string(data), `"component":"Fx"`)
}

func TestRunApp_Metrics(t *testing.T) {
	out, _, err := runArgs(t, "-metrics", "prometheus", "-log-level", "ERROR", "1", "2", "3", "4")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "1 , 2 , 3 , 4 , \n"))
	require.Contains(t, out, "bstree_tree_inserts_total 4")
	require.Contains(t, out, "bstree_tree_rebuilds_total 1")
	require.Contains(t, out, "app_core_goroutines")
}

func TestParseConfig_ReportsEveryError(t *testing.T) {
	cfg, err := parseConfig([]string{"-colour", "pink", "-log-level", "verbose", "1"}, io.Discard)
	require.Nil(t, cfg)
	require.ErrorIs(t, err, errBstreeInvalidArgs)
	require.Len(t, multierr.Errors(err), 2)
	require.Contains(t, err.Error(), `colour "pink"`)
	require.Contains(t, err.Error(), `log level "verbose"`)

	cfg, err = parseConfig([]string{"-hex", "#zz", "x"}, io.Discard)
	require.Nil(t, cfg)
	require.ErrorIs(t, err, paint.ErrPaintInvalidFormat)
	require.Len(t, multierr.Errors(err), 2)
	require.Contains(t, err.Error(), `"#zz"`)
	require.Contains(t, err.Error(), `value "x"`)

	cfg, err = parseConfig([]string{"-hex", "#008080", "1"}, io.Discard)
	require.NoError(t, err)
	require.Equal(t, paint.PaintRGB("7", 0, 128, 128), cfg.painter("7"))
}

func TestRunApp_LogEncoders(t *testing.T) {
	_, logOut, err := runArgs(t, "-log-colour", "-log-time", "millis", "-log-level", "info", "2", "1")
	require.NoError(t, err)
	require.Contains(t, logOut, "\x1b[34mINFO\x1b[0m")
	require.Contains(t, logOut, "[bstree] tree built")
}
