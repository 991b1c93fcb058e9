package walker

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var pyExts = map[string]bool{"py": true}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func relPaths(files []FileInfo) map[string]bool {
	set := make(map[string]bool, len(files))
	for _, f := range files {
		set[f.RelPath] = true
	}
	return set
}

func TestListSkipsIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", "print('hi')\n")
	writeFile(t, root, "pkg/util.py", "x = 1\n")
	writeFile(t, root, ".git/hooks/hook.py", "x = 1\n")
	writeFile(t, root, "node_modules/lib/index.py", "x = 1\n")
	writeFile(t, root, "__pycache__/main.py", "x = 1\n")
	writeFile(t, root, ".venv/lib/site.py", "x = 1\n")
	writeFile(t, root, IndexDirName+"/cache.py", "x = 1\n")

	got := relPaths(List(root, pyExts))

	for _, want := range []string{"main.py", "pkg/util.py"} {
		if !got[want] {
			t.Errorf("missing %s in walk results", want)
		}
	}
	for _, excluded := range []string{
		".git/hooks/hook.py",
		"node_modules/lib/index.py",
		"__pycache__/main.py",
		".venv/lib/site.py",
		IndexDirName + "/cache.py",
	} {
		if got[excluded] {
			t.Errorf("%s should have been ignored", excluded)
		}
	}
}

func TestListFiltersByExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "x = 1\n")
	writeFile(t, root, "b.txt", "text\n")

	got := relPaths(List(root, pyExts))
	if !got["a.py"] || got["b.txt"] {
		t.Errorf("unexpected results: %v", got)
	}
}

func TestScoutignorePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".scoutignore", "# generated code\ngenerated\n**/*_pb.py\n")
	writeFile(t, root, "main.py", "x = 1\n")
	writeFile(t, root, "generated/out.py", "x = 1\n")
	writeFile(t, root, "proto/v1_pb.py", "x = 1\n")

	got := relPaths(List(root, pyExts))
	if !got["main.py"] {
		t.Error("main.py should be listed")
	}
	if got["generated/out.py"] {
		t.Error("generated/out.py should be ignored")
	}
	if got["proto/v1_pb.py"] {
		t.Error("proto/v1_pb.py should be ignored by glob")
	}
}

func TestRecentOrdersByModTime(t *testing.T) {
	root := t.TempDir()
	old := writeFile(t, root, "old.py", "x = 1\n")
	mid := writeFile(t, root, "mid.py", "x = 1\n")
	recent := writeFile(t, root, "recent.py", "x = 1\n")

	base := time.Now().Add(-time.Hour)
	for i, path := range []string{old, mid, recent} {
		ts := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(path, ts, ts); err != nil {
			t.Fatal(err)
		}
	}

	files := Recent(root, pyExts, 2)
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].RelPath != "recent.py" || files[1].RelPath != "mid.py" {
		t.Errorf("order = [%s %s], want [recent.py mid.py]", files[0].RelPath, files[1].RelPath)
	}
}

func TestEnsureIgnoreFile(t *testing.T) {
	root := t.TempDir()
	if err := EnsureIgnoreFile(root); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, ".scoutignore")); err != nil {
		t.Fatalf("expected .scoutignore to be created: %v", err)
	}

	// An existing file must be left alone.
	custom := "generated\n"
	if err := os.WriteFile(filepath.Join(root, ".scoutignore"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureIgnoreFile(root); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(root, ".scoutignore"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != custom {
		t.Errorf("existing .scoutignore was overwritten: %q", got)
	}
}

func TestListSkipsEmptyFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "empty.py", "")
	writeFile(t, root, "full.py", "x = 1\n")

	got := relPaths(List(root, pyExts))
	if got["empty.py"] {
		t.Error("empty file should be skipped")
	}
	if !got["full.py"] {
		t.Error("full.py should be listed")
	}
}
