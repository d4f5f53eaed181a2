package scene_test

import (
	"os"
	"path/filepath"
	"testing"

	"scenefuse/internal/config"
	"scenefuse/internal/definition"
	serr "scenefuse/internal/errors"
	"scenefuse/internal/scene"
	"scenefuse/pkg/testutils"
	"scenefuse/pkg/types"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultDefinition(t *testing.T) types.ImportDefinition {
	t.Helper()
	def, err := definition.Select(definition.Default(), "")
	require.NoError(t, err)
	return def
}

func newGrouper(t *testing.T, opts ...scene.Option) *scene.Grouper {
	t.Helper()
	g, err := scene.New(defaultDefinition(t), opts...)
	require.NoError(t, err)
	return g
}

func TestGroupWindowsPaths(t *testing.T) {
	g := newGrouper(t, scene.WithInclude("*.{tif,tiff}"))

	got, err := g.Group(`C:\Data`, []string{
		`C:\Data\Scene1\DNA1.tif`,
		`C:\Data\Scene1\DNA2.tif`,
		`C:\Data\Batch\Scene2\DNA1.tif`,
		`C:\Data\Scene1\notes.txt`,
	})
	require.NoError(t, err)

	want := types.Grouping{
		"Scene1": {"DNA1": `C:\Data\Scene1\DNA1.tif`, "DNA2": `C:\Data\Scene1\DNA2.tif`},
		"Scene2": {"DNA1": `C:\Data\Batch\Scene2\DNA1.tif`},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Group() mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupIsOrderIndependent(t *testing.T) {
	g := newGrouper(t, scene.WithDuplicates(config.DuplicatesLast))
	paths := []string{
		"/data/a/Ir191.tif",
		"/data/b/Ir193.tif",
		"/data/x/a/Ir191.tif",
		"/data/a/Ir193.tif",
	}
	reversed := []string{paths[3], paths[2], paths[1], paths[0]}

	first, err := g.Group("/data", paths)
	require.NoError(t, err)
	second, err := g.Group("/data", reversed)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("grouping depends on input order (-first +second):\n%s", diff)
	}
	assert.Equal(t, "/data/x/a/Ir191.tif", first["a"]["Ir191"], "lexically last path wins")
}

func TestGroupRejectsDuplicates(t *testing.T) {
	g := newGrouper(t)

	_, err := g.Group("/data", []string{
		"/data/a/Ir191.tif",
		"/data/run2/a/Ir191.tif",
	})
	require.Error(t, err)
	assert.True(t, serr.IsAmbiguousLayer(err))

	var amb *serr.AmbiguityError
	require.ErrorAs(t, err, &amb)
	assert.Equal(t, "a", amb.Scene())
	assert.Equal(t, "Ir191", amb.Layer())
	assert.Equal(t, []string{"/data/a/Ir191.tif", "/data/run2/a/Ir191.tif"}, amb.Paths())
}

func TestGroupEmptyInput(t *testing.T) {
	g := newGrouper(t)
	got, err := g.Group("/data", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClassify(t *testing.T) {
	g := newGrouper(t, scene.WithInclude("*.tif"))

	res, err := g.Classify("/data", "/data/Scene1/DNA1.ome.tif")
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, definition.RootFolderTagString, res.Pattern)
	assert.Equal(t, "Scene1", res.Scene)
	assert.Equal(t, "DNA1.ome", res.Layer)
	assert.Equal(t, "tif", res.Captures["any"])

	res, err = g.Classify("/data", "/data/Scene1/DNA1.png")
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Equal(t, "file name not included", res.Reason)

	res, err = g.Classify("/data", "/data/DNA1.tif")
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Equal(t, "no TagString matched", res.Reason)

	res, err = g.Classify("/elsewhere", "/data/Scene1/DNA1.tif")
	require.NoError(t, err)
	assert.False(t, res.Matched)
}

func TestClassifyUndeclaredLayer(t *testing.T) {
	def := defaultDefinition(t)
	def.SceneDefinition.Layers = []types.ImageLayer{{Name: "Nuclear", Token: "{layer}", Match: "DNA1"}}
	g, err := scene.New(def)
	require.NoError(t, err)

	res, err := g.Classify("/data", "/data/S1/DNA1.tif")
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, "Nuclear", res.Layer)

	res, err = g.Classify("/data", "/data/S1/DNA2.tif")
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Equal(t, "S1", res.Scene)
	assert.Contains(t, res.Reason, "not declared")
}

func TestIMCChannelNames(t *testing.T) {
	g := newGrouper(t, scene.WithIMCChannelNames(true))

	got, err := g.Group("/data", []string{"/data/ROI1/80ArAr(ArAr80Di).tif", "/data/ROI1/DNA1.tif"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ArAr(80)_80ArAr", "DNA1"}, got.LayerNames("ROI1"))
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := scene.New(defaultDefinition(t), scene.WithDuplicates("first"))
	require.Error(t, err)
	assert.True(t, serr.IsInvalidConfig(err))

	_, err = scene.New(defaultDefinition(t), scene.WithInclude("*.[tif"))
	require.Error(t, err)

	bad := defaultDefinition(t)
	bad.SceneSearch.TagStrings = []types.TagString{{Value: `{root}\{scene}`}}
	_, err = scene.New(bad)
	require.Error(t, err)
	assert.True(t, serr.IsMalformedPattern(err))
}

func TestNewWithConfig(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.Settings.Duplicates = config.DuplicatesLast
	g, err := scene.NewWithConfig(cfg, defaultDefinition(t))
	require.NoError(t, err)

	res, err := g.Classify("/data", "/data/S1/DNA1.jpg")
	require.NoError(t, err)
	assert.False(t, res.Matched, "default include accepts only TIFF files")
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	testutils.WriteTree(t, root,
		"Scene1/DNA1.tif",
		"Scene1/DNA2.tif",
		"Scene1/readme.md",
		"Batch/Scene2/DNA1.tiff",
		"Batch/Scene2/DNA2.TIF",
		"loose.tif",
	)
	g := newGrouper(t, scene.WithInclude(config.New().Include...))

	got, err := g.ScanDirectory(root)
	require.NoError(t, err)

	want := types.Grouping{
		"Scene1": {
			"DNA1": filepath.Join(root, "Scene1", "DNA1.tif"),
			"DNA2": filepath.Join(root, "Scene1", "DNA2.tif"),
		},
		"Scene2": {
			"DNA1": filepath.Join(root, "Batch", "Scene2", "DNA1.tiff"),
			"DNA2": filepath.Join(root, "Batch", "Scene2", "DNA2.TIF"),
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ScanDirectory() mismatch (-want +got):\n%s", diff)
	}
}

func TestScanDirectoryErrors(t *testing.T) {
	g := newGrouper(t)

	_, err := g.ScanDirectory(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, serr.IsFileNotFound(err))

	file := filepath.Join(t.TempDir(), "file.tif")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = g.ScanDirectory(file)
	require.Error(t, err)
	assert.Equal(t, serr.InvalidPath, serr.KindOf(err))
}

func TestScanDirectoryRelativeRoots(t *testing.T) {
	base := t.TempDir()
	testutils.CreateTestFilesWithContent(t, base, map[string]string{
		"data/Scene1/DNA1.tif": "dna1",
		"data/Scene1/DNA2.tif": "dna2",
	})
	testutils.Chdir(t, base)
	g := newGrouper(t)

	for _, root := range []string{"data", "./data", "data/", "data/../data"} {
		got, err := g.ScanDirectory(root)
		require.NoError(t, err, root)
		assert.Equal(t, []string{"Scene1"}, got.SceneNames(), "root %q", root)
		assert.Equal(t, 2, got.FileCount(), "root %q", root)
	}

	testutils.Chdir(t, filepath.Join(base, "data"))
	got, err := g.ScanDirectory(".")
	require.NoError(t, err)
	assert.Equal(t, []string{"DNA1", "DNA2"}, got.LayerNames("Scene1"))

	res, err := g.Classify("data", "./data/Scene1/DNA1.tif")
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, "Scene1", res.Scene)
}
