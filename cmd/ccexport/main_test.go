package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/ccexport/pkg/gltfscene"
)

// writeScene saves CCC_Outfit{CC_Shirt{Mesh}, CC_Pants} as a GLB and an
// empty config next to it.
func writeScene(t *testing.T) (scenePath, configPath string) {
	t.Helper()
	dir := t.TempDir()
	doc := &gltf.Document{
		Asset: gltf.Asset{Version: "2.0"},
		Nodes: []*gltf.Node{
			{Name: "CCC_Outfit", Children: []int{1, 3}},
			{Name: "CC_Shirt", Children: []int{2}},
			{Name: "Mesh"},
			{Name: "CC_Pants"},
		},
		Scenes: []*gltf.Scene{{Name: "Scene", Nodes: []int{0}}},
		Scene:  gltf.Index(0),
	}
	scenePath = filepath.Join(dir, "outfit.glb")
	if err := gltf.SaveBinary(doc, scenePath); err != nil {
		t.Fatalf("saving scene: %v", err)
	}
	configPath = filepath.Join(dir, "ccexport.yaml")
	if err := os.WriteFile(configPath, []byte("logging:\n  level: error\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return scenePath, configPath
}

func TestExportCommand(t *testing.T) {
	scenePath, configPath := writeScene(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"export", "--config", configPath, scenePath}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stdout=%q stderr=%q", code, stdout.String(), stderr.String())
	}
	if !strings.Contains(stdout.String(), "[INFO] CC export complete.") {
		t.Errorf("missing completion report: %q", stdout.String())
	}

	// Ids were persisted, so the folder names can be predicted.
	doc, err := gltfscene.Load(scenePath)
	if err != nil {
		t.Fatalf("reloading scene: %v", err)
	}
	outfit := doc.Scene.Find("CCC_Outfit")
	shirt := doc.Scene.Find("CC_Shirt")
	if outfit.ID == "" || shirt.ID == "" {
		t.Fatal("ids were not saved into the scene")
	}

	shirtFile := filepath.Join(filepath.Dir(scenePath), "cc_export", "character_config",
		"CCC_Outfit_CC_id_"+outfit.ID, "CC_Shirt_CC_id_"+shirt.ID, "CC_Shirt.glb")
	exported, err := gltf.Open(shirtFile)
	if err != nil {
		t.Fatalf("opening %s: %v", shirtFile, err)
	}
	if len(exported.Nodes) != 2 {
		t.Errorf("expected shirt and mesh in export, got %d nodes", len(exported.Nodes))
	}

	// A second run keeps the same ids and paths.
	stdout.Reset()
	if code := run([]string{"export", "--config", configPath, scenePath}, &stdout, &stderr); code != 0 {
		t.Fatalf("second export failed: %q", stdout.String())
	}
	if _, err := os.Stat(shirtFile); err != nil {
		t.Errorf("second export moved the shirt: %v", err)
	}
}

func TestPlanCommand(t *testing.T) {
	scenePath, configPath := writeScene(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"plan", "--config", configPath, "--no-root-folder", "--out", "/tmp/ccexport-plan", scenePath}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr=%q", code, stderr.String())
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 planned files, got %q", stdout.String())
	}
	if !strings.Contains(lines[0], "CC_Shirt.glb\t(2 objects)") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if _, err := os.Stat("/tmp/ccexport-plan"); err == nil {
		t.Error("plan must not create the export path")
	}
}

// plannedFiles returns the paths printed by the plan command.
func plannedFiles(t *testing.T, out string) []string {
	t.Helper()
	var files []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		path, _, ok := strings.Cut(line, "\t")
		if !ok {
			t.Fatalf("unexpected plan line %q", line)
		}
		files = append(files, path)
	}
	return files
}

func TestPlanMatchesExport(t *testing.T) {
	scenePath, configPath := writeScene(t)
	var stdout, stderr bytes.Buffer

	if code := run([]string{"plan", "--config", configPath, scenePath}, &stdout, &stderr); code != 0 {
		t.Fatalf("first plan failed: %q", stderr.String())
	}
	first := plannedFiles(t, stdout.String())

	stdout.Reset()
	if code := run([]string{"plan", "--config", configPath, scenePath}, &stdout, &stderr); code != 0 {
		t.Fatalf("second plan failed: %q", stderr.String())
	}
	second := plannedFiles(t, stdout.String())
	if strings.Join(first, ",") != strings.Join(second, ",") {
		t.Errorf("plans differ:\n%v\n%v", first, second)
	}

	stdout.Reset()
	if code := run([]string{"export", "--config", configPath, scenePath}, &stdout, &stderr); code != 0 {
		t.Fatalf("export failed: %q", stdout.String())
	}
	for _, f := range first {
		if _, err := os.Stat(f); err != nil {
			t.Errorf("planned file was not exported: %v", err)
		}
	}
}

func TestPlanWithoutPersistedIDs(t *testing.T) {
	scenePath, configPath := writeScene(t)
	var stdout, stderr bytes.Buffer

	args := []string{"plan", "--config", configPath, "--no-persist-ids", scenePath}
	if code := run(args, &stdout, &stderr); code != 0 {
		t.Fatalf("plan failed: %q", stderr.String())
	}
	for _, f := range plannedFiles(t, stdout.String()) {
		if !strings.Contains(f, "CCC_Outfit_CC_id_<new>") {
			t.Errorf("expected a placeholder id in %q", f)
		}
	}

	doc, err := gltfscene.Load(scenePath)
	if err != nil {
		t.Fatalf("reloading scene: %v", err)
	}
	if id := doc.Scene.Find("CCC_Outfit").ID; id != "" {
		t.Errorf("scene was modified, outfit id %q", id)
	}
}

func TestIDsCommand(t *testing.T) {
	scenePath, configPath := writeScene(t)
	var stdout, stderr bytes.Buffer

	if code := run([]string{"ids", "--config", configPath, scenePath}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d: %q", code, stdout.String())
	}
	if !strings.Contains(stdout.String(), "Assigned 3 id(s)") {
		t.Errorf("unexpected output %q", stdout.String())
	}

	stdout.Reset()
	if code := run([]string{"ids", "--config", configPath, scenePath}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if !strings.Contains(stdout.String(), "already have ids") {
		t.Errorf("second run should assign nothing: %q", stdout.String())
	}
}

func TestExportPreconditionFailure(t *testing.T) {
	dir := t.TempDir()
	doc := &gltf.Document{
		Asset: gltf.Asset{Version: "2.0"},
		Nodes: []*gltf.Node{{Name: "CCC_A"}, {Name: "CCC_B"}},
		Scenes: []*gltf.Scene{{Nodes: []int{0, 1}}},
	}
	scenePath := filepath.Join(dir, "two.glb")
	if err := gltf.SaveBinary(doc, scenePath); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(dir, "ccexport.yaml")
	if err := os.WriteFile(configPath, []byte("logging:\n  level: error\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"export", "--config", configPath, scenePath}, &stdout, &stderr)
	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stdout.String(), "[WARNING] The top level object must be a single CCC_") {
		t.Errorf("missing warning: %q", stdout.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "cc_export")); err == nil {
		t.Error("nothing should be written on precondition failure")
	}
}

func TestInitConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ccexport.yaml")
	var stdout, stderr bytes.Buffer

	if code := run([]string{"init-config", path}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d: %q", code, stdout.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written config: %v", err)
	}
	if !strings.Contains(string(data), "//cc_export") {
		t.Errorf("unexpected config:\n%s", data)
	}

	stdout.Reset()
	if code := run([]string{"init-config", path}, &stdout, &stderr); code != 1 {
		t.Errorf("existing file should not be overwritten, got %d", code)
	}
	if code := run([]string{"init-config", "--force", path}, &stdout, &stderr); code != 0 {
		t.Errorf("--force should overwrite, got %d", code)
	}
}

func TestPlaceholderAndUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"propagate-shape-keys"}, &stdout, &stderr); code != 0 {
		t.Errorf("placeholder should succeed, got %d", code)
	}
	if !strings.Contains(stdout.String(), "placeholder") {
		t.Errorf("unexpected placeholder output %q", stdout.String())
	}

	if code := run(nil, &stdout, &stderr); code != 1 {
		t.Errorf("missing command should fail, got %d", code)
	}
	if code := run([]string{"frobnicate"}, &stdout, &stderr); code != 1 {
		t.Errorf("unknown command should fail, got %d", code)
	}
	if code := run([]string{"export"}, &stdout, &stderr); code != 1 {
		t.Errorf("export without a scene should fail, got %d", code)
	}
}
