// Command idscene loads a level from a WAD, builds its scene buffers in host
// memory and runs it for a number of ticks.
package main

import (
	"archive/zip"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	vpk "github.com/galaco/vpk2"

	"github.com/saiko-tech/idscene/pkg/gameconfig"
	"github.com/saiko-tech/idscene/pkg/idscene"
	"github.com/saiko-tech/idscene/pkg/idscene/gpu"
	"github.com/saiko-tech/idscene/pkg/wad"
)

func main() {
	var (
		wadName = flag.String("wad", "DOOM1.WAD", "WAD file to load")
		dir     = flag.String("dir", ".", "directory to search for the WAD")
		pk3     = flag.String("pk3", "", "comma separated zip/pk3 packages to search")
		vpkList = flag.String("vpk", "", "comma separated vpk archives to search")
		mapName = flag.String("map", "", "map to load, defaults to the first one")
		ticks   = flag.Int("ticks", 35, "ticks to run")
		workers = flag.Int("workers", 0, "sectors tessellated in parallel, 0 for GOMAXPROCS")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	idscene.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	logger := idscene.Logger()

	var zips []*zip.Reader

	if *pk3 != "" {
		for _, path := range strings.Split(*pk3, ",") {
			rc, err := zip.OpenReader(path)
			if err != nil {
				log.Fatalf("failed to open package %s: %v", path, err)
			}
			defer rc.Close()

			zips = append(zips, &rc.Reader)
		}
	}

	var vpks []*vpk.VPK

	if *vpkList != "" {
		var err error

		vpks, err = wad.OpenVPKs(strings.Split(*vpkList, ","))
		if err != nil {
			log.Fatal(err)
		}
	}

	archive, err := wad.NewFileSystem([]string{*dir}, zips, vpks).ReadArchive(*wadName)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *wadName, err)
	}

	game := gameconfig.Doom

	if endText, ok := archive.EndText(); ok {
		if detected, ok := gameconfig.DetectGame(endText); ok {
			game = detected
		} else {
			logger.Warn("unknown game, assuming doom")
		}
	}

	cfg, err := gameconfig.ForGame(game)
	if err != nil {
		log.Fatalf("failed to load game config: %v", err)
	}

	name := *mapName
	if name == "" {
		maps := archive.MapNames()
		if len(maps) == 0 {
			log.Fatalf("%s contains no maps", *wadName)
		}

		name = maps[0]
	}

	opts := []idscene.Option{}
	if *workers > 0 {
		opts = append(opts, idscene.WithWorkers(*workers))
	}

	world, err := idscene.LoadWorld(archive, name, cfg, opts...)
	if err != nil {
		log.Fatalf("failed to load %s: %v", name, err)
	}

	images, err := gpu.BuildImageTable(archive, world.TextureRefs())
	if err != nil {
		log.Fatalf("failed to lay out images: %v", err)
	}

	sub := gpu.NewMemorySubstrate()

	scene, err := gpu.NewScene(sub, images, gpu.WithLabel(strings.ToLower(name)))
	if err != nil {
		log.Fatalf("failed to create scene: %v", err)
	}
	defer scene.Release()

	start := time.Now()

	for i := 0; i < *ticks; i++ {
		world.Think()

		if err := scene.Think(world); err != nil {
			log.Fatalf("tick %d: %v", world.Tick(), err)
		}

		world.ThinkEnd()
	}

	mem := sub.Stats()

	logger.Info("done",
		slog.String("game", game.String()),
		slog.String("map", name),
		slog.Int("images", images.Len()),
		slog.Any("image_bytes", images.StorageSize()),
		slog.Any("scene", scene.Stats()),
		slog.Int("writes", mem.Writes),
		slog.Any("bytes_written", mem.BytesWritten),
		slog.Duration("elapsed", time.Since(start)))
}
