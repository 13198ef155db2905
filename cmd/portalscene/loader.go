package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"portalscene/internal/config"
	"portalscene/internal/convert"
	"portalscene/internal/engine3D/viewport"
	"portalscene/internal/scene"
	"portalscene/internal/utils"
)

// sceneRequest builds the asset load for the current device class. Mobile
// loads a half-resolution texture.
func sceneRequest(cfg config.Config, class viewport.DeviceClass) scene.Request {
	return scene.Request{
		Texture:       cfg.Assets.Texture,
		Model:         cfg.Assets.Model,
		FallbackModel: cfg.Assets.FallbackModel,
		Bundle:        cfg.Assets.Bundle,
		CacheDir:      cfg.Assets.CacheDir,
		Names: scene.NodeNames{
			Baked:      cfg.Nodes.Baked,
			Portal:     cfg.Nodes.Portal,
			PoleLights: cfg.Nodes.PoleLights,
		},
		Reduce: class == viewport.Mobile,
	}
}

func runDecode(ctx context.Context, path, outDir string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		utils.Info("Testing decode: %s", path)
		dst := convert.PNGPath(path, outDir)
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", outDir, err)
		}
		if err := convert.ConvertToPNG(path, dst); err != nil {
			return err
		}
		utils.Info("Decode successful! Saved to: %s", dst)
		return nil
	}

	utils.Info("Starting bulk texture conversion...")
	count, err := convert.BulkConvertTextures(ctx, path, outDir)
	utils.Info("Bulk conversion finished. Processed %d textures.", count)
	return err
}

func runPack(ctx context.Context, dir, pkgPath string) error {
	if filepath.Ext(pkgPath) != ".pkg" {
		pkgPath += ".pkg"
	}
	n, err := convert.PackDir(ctx, dir, pkgPath)
	if err != nil {
		return err
	}
	utils.Info("Packed %d files into %s", n, pkgPath)
	return nil
}
