package ligen

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/me/ligflow/pkg/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testScreeningConfig() ScreeningConfig {
	return ScreeningConfig{
		InputSMI:         "/data/ligands.smi",
		InputMol2:        "/data/crystal.mol2",
		InputPDB:         "/data/protein.pdb",
		InputProteinName: "p38",
		OutputPath:       "/work/screening/scores.csv",
		Cores:            8,
	}.WithDefaults()
}

func TestScreeningDescription_WireFormat(t *testing.T) {
	c := NewContainer("ligen.sif", testLogger())
	d, err := ScreeningDescription(testScreeningConfig(), c)
	if err != nil {
		t.Fatalf("ScreeningDescription() error = %v", err)
	}

	data, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("encoded description is not valid JSON: %v", err)
	}

	if doc["name"] != "vscreen" {
		t.Errorf("name = %v, want vscreen", doc["name"])
	}

	pipeline, ok := doc["pipeline"].([]any)
	if !ok {
		t.Fatalf("pipeline is %T, want array", doc["pipeline"])
	}
	wantKinds := []string{
		"reader_mol2", "parser_mol2", "bucketizer_ligand", "unfold",
		"dock_n_score", "writer_csv_bucket", "tracker_bucket", "sink_bucket",
	}
	var gotKinds []string
	for _, raw := range pipeline {
		stage := raw.(map[string]any)
		gotKinds = append(gotKinds, stage["kind"].(string))
	}
	if !reflect.DeepEqual(gotKinds, wantKinds) {
		t.Errorf("stage kinds = %v, want %v", gotKinds, wantKinds)
	}

	// Field typing is part of the wire contract: worker counts are numbers,
	// the dock/score protocol constants and the sink worker count are strings.
	parser := pipeline[1].(map[string]any)
	if _, ok := parser["number_of_workers"].(float64); !ok {
		t.Errorf("parser number_of_workers is %T, want JSON number", parser["number_of_workers"])
	}
	dock := pipeline[4].(map[string]any)
	if dock["number_of_restart"] != "256" || dock["clipping_factor"] != "256" {
		t.Errorf("dock_n_score constants = %v / %v, want \"256\" / \"256\"",
			dock["number_of_restart"], dock["clipping_factor"])
	}
	if dock["wait_setup"] != "reader" {
		t.Errorf("dock_n_score wait_setup = %v, want reader", dock["wait_setup"])
	}
	scoring := dock["scoring_functions"].([]any)
	if len(scoring) != 1 || scoring[0] != "d22" {
		t.Errorf("scoring_functions = %v, want [d22]", scoring)
	}
	writer := pipeline[5].(map[string]any)
	if writer["print_preamble"] != "1" {
		t.Errorf("writer print_preamble = %v, want \"1\"", writer["print_preamble"])
	}
	sink := pipeline[7].(map[string]any)
	if sink["number_of_workers"] != "1" {
		t.Errorf("sink number_of_workers = %v, want \"1\"", sink["number_of_workers"])
	}

	targets := doc["targets"].([]any)
	if len(targets) != 1 {
		t.Fatalf("targets = %d entries, want 1", len(targets))
	}
	target := targets[0].(map[string]any)
	if target["name"] != "p38" {
		t.Errorf("target name = %v, want p38", target["name"])
	}
	cfg := target["configuration"].(map[string]any)
	for _, block := range []string{"input", "filtering", "pocket_identification", "anchor_points"} {
		if _, ok := cfg[block]; !ok {
			t.Errorf("configuration missing block %q", block)
		}
	}
	filtering := cfg["filtering"].(map[string]any)
	if filtering["algorithm"] != "probe" || filtering["radius"] != "8" {
		t.Errorf("filtering = %v, want probe with radius \"8\"", filtering)
	}
	pocket := cfg["pocket_identification"].(map[string]any)
	if pocket["algorithm"] != "caviar_like" {
		t.Errorf("pocket algorithm = %v, want caviar_like", pocket["algorithm"])
	}
	anchors := cfg["anchor_points"].(map[string]any)
	if anchors["algorithms"] != "maximum_points" || anchors["separation_radius"] != "4" {
		t.Errorf("anchor_points = %v, want maximum_points with separation_radius \"4\"", anchors)
	}
}

func TestScreeningDescription_ContainerPaths(t *testing.T) {
	c := NewContainer("ligen.sif", testLogger())
	d, err := ScreeningDescription(testScreeningConfig(), c)
	if err != nil {
		t.Fatalf("ScreeningDescription() error = %v", err)
	}

	reader := d.Pipeline[0].(ReaderStage)
	if reader.InputFilepath == "/data/ligands.smi" {
		t.Error("reader input_filepath is a host path; it must be mapped into the container")
	}
	if len(c.Binds()) == 0 {
		t.Error("container has no bind mounts after mapping inputs")
	}
}

func TestScreeningDescription_ZeroWorkersRejected(t *testing.T) {
	cfg := testScreeningConfig()
	cfg.NumParser = 0

	c := NewContainer("ligen.sif", testLogger())
	_, err := ScreeningDescription(cfg, c)
	var cfgErr *model.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("ScreeningDescription() error = %v, want ConfigurationError", err)
	}
}

func TestDockingDescription_Defaults(t *testing.T) {
	cfg := DockingConfig{
		InputSMI:         "/work/selected.smi",
		InputMol2:        "/data/crystal.mol2",
		InputPDB:         "/data/protein.pdb",
		InputProteinName: "p38",
		OutputPath:       "/work/docking/poses.csv",
	}.WithDefaults()

	c := NewContainer("ligen.sif", testLogger())
	d, err := DockingDescription(cfg, c)
	if err != nil {
		t.Fatalf("DockingDescription() error = %v", err)
	}
	if d.Name != "dock" {
		t.Errorf("name = %q, want dock", d.Name)
	}

	parser := d.Pipeline[1].(ParserStage)
	if parser.NumberOfWorkers != DefaultDockingNumParser {
		t.Errorf("parser workers = %d, want %d", parser.NumberOfWorkers, DefaultDockingNumParser)
	}
}

func TestContainer_MapInputStable(t *testing.T) {
	c := NewContainer("ligen.sif", testLogger())
	first := c.MapInput("/data/ligands.smi")
	second := c.MapInput("/data/ligands.smi")
	if first != second {
		t.Errorf("mapping the same host path twice gave %q and %q", first, second)
	}
	if got := len(c.Binds()); got != 1 {
		t.Errorf("binds = %d, want 1", got)
	}
}

func TestContainer_ImageRef(t *testing.T) {
	tests := []struct {
		image string
		want  string
	}{
		{"ligen.sif", "ligen.sif"},
		{"docker://ligen:latest", "docker://ligen:latest"},
		{"ligen:latest", "docker://ligen:latest"},
	}
	for _, tt := range tests {
		c := NewContainer(tt.image, testLogger())
		if got := c.imageRef(); got != tt.want {
			t.Errorf("imageRef(%q) = %q, want %q", tt.image, got, tt.want)
		}
	}
}
