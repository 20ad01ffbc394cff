package services

import (
	"context"
	"os/exec"
	"path/filepath"
	"time"

	"section-cms/pkg/config"
	"section-cms/pkg/log"
)

// BuildSite renders the Hugo site, drafts included, into config.PublicPath
// so the preview route serves the pages with their resolved sections.
func BuildSite(ctx context.Context) (string, error) {
	dest, err := filepath.Abs(config.PublicPath)
	if err != nil {
		return "", err
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, "hugo",
		"--source", config.RepoPath,
		"--destination", dest,
		"--baseURL", config.GetAppURL()+config.PreviewURL,
		"--cleanDestinationDir",
		"--buildDrafts",
	)
	output, err := cmd.CombinedOutput()

	logger := log.WithComponent("hugo")
	if err != nil {
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("site build failed")
	} else {
		logger.Info().Dur("duration", time.Since(start)).Msg("site built")
	}
	return string(output), err
}
