// Package main is the entry point for the tribatch mesh viewer.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/tribatch/internal/config"
	"github.com/Faultbox/tribatch/internal/logger"
	"github.com/Faultbox/tribatch/internal/viewer"
)

var (
	flagNormals   = flag.Bool("normals", true, "Expect a normal channel in headerless mesh files")
	flagTexCoords = flag.Bool("texcoords", false, "Expect a texture coordinate channel in headerless mesh files")
)

func main() {
	config.ParseFlags()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <mesh file (.tbm, .stl, .obj)>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Log.Info("=== tribatch viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	v, err := viewer.New(cfg, viewer.Options{
		MeshPath:        flag.Arg(0),
		LegacyNormals:   *flagNormals,
		LegacyTexCoords: *flagTexCoords,
	})
	if err != nil {
		logger.Log.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Log.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Log.Info("viewer closed normally")
}
