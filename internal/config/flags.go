package config

import "flag"

// Flags holds command-line overrides. Zero values leave the config alone.
type Flags struct {
	Config       string
	Debug        bool
	Out          string
	NoRootFolder bool
	Keep         bool
	Trash        bool
	Permissive   bool
	NoPersistIDs bool
}

// Register binds the overrides to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Out, "out", "", "Export path (overrides export.export_path)")
	fs.BoolVar(&f.NoRootFolder, "no-root-folder", false, "Do not wrap output in a character_config folder")
	fs.BoolVar(&f.Keep, "keep", false, "Do not delete the destination before exporting")
	fs.BoolVar(&f.Trash, "trash", false, "Move the old destination to the trash instead of deleting it")
	fs.BoolVar(&f.Permissive, "permissive", false, "Accept any top-level objects instead of a single CCC_")
	fs.BoolVar(&f.NoPersistIDs, "no-persist-ids", false, "Do not write assigned ids back into the scene file")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Out != "" {
		cfg.Export.ExportPath = f.Out
	}
	if f.NoRootFolder {
		cfg.Export.AddRootFolder = false
	}
	if f.Keep {
		cfg.Export.DeleteAndRecreate = false
	}
	if f.Trash {
		cfg.Export.DeleteMode = DeleteTrash
	}
	if f.Permissive {
		cfg.Export.Mode = "permissive"
	}
	if f.NoPersistIDs {
		cfg.Export.PersistIDs = false
	}
}
