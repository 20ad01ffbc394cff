package services

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"section-cms/pkg/config"
	"section-cms/pkg/log"
)

// ExecuteGitWithToken runs git in dir with every occurrence of the configured
// remote name replaced by its URL carrying token. The token is scrubbed from
// the returned output.
func ExecuteGitWithToken(ctx context.Context, dir, token string, args ...string) (string, error) {
	cmdGetURL := exec.CommandContext(ctx, "git", "remote", "get-url", config.GitRemote)
	cmdGetURL.Dir = dir
	outURL, err := cmdGetURL.Output()
	if err != nil {
		return "Failed to get remote url", err
	}
	remoteURL := strings.TrimSpace(string(outURL))
	u, err := url.Parse(remoteURL)
	if err != nil {
		return "Invalid remote url", err
	}
	u.User = url.UserPassword("oauth2", token)
	authenticatedURL := u.String()

	newArgs := make([]string, len(args))
	copy(newArgs, args)
	for i, v := range newArgs {
		if v == config.GitRemote {
			newArgs[i] = authenticatedURL
		}
	}

	cmd := exec.CommandContext(ctx, "git", newArgs...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	safeLog := strings.ReplaceAll(string(output), authenticatedURL, remoteURL)
	if token != "" {
		safeLog = strings.ReplaceAll(safeLog, token, "***")
	}
	return safeLog, err
}

// SyncRepo pulls the configured branch and drops the page index.
func SyncRepo(ctx context.Context, token string) (string, error) {
	out, err := ExecuteGitWithToken(ctx, config.RepoPath, token, "pull", config.GitRemote, config.GitBranch)
	if err == nil {
		InvalidateCache()
	}
	return out, err
}

// PublishRepo commits all changes as the CMS bot and pushes them.
func PublishRepo(ctx context.Context, token string) (string, error) {
	logger := log.WithComponent("git")

	addCmd := exec.CommandContext(ctx, "git", "add", ".")
	addCmd.Dir = config.RepoPath
	if out, err := addCmd.CombinedOutput(); err != nil {
		return string(out), err
	}

	msg := fmt.Sprintf("Update sections via Section CMS: %s", time.Now().Format("2006-01-02 15:04:05"))
	commitCmd := exec.CommandContext(ctx, "git",
		"-c", "user.name="+config.GitUserName,
		"-c", "user.email="+config.GitUserEmail,
		"commit", "-m", msg,
	)
	commitCmd.Dir = config.RepoPath
	if out, err := commitCmd.CombinedOutput(); err != nil {
		// nothing to commit still allows pushing earlier commits
		logger.Info().Str("output", strings.TrimSpace(string(out))).Msg("git commit skipped")
	}

	out, err := ExecuteGitWithToken(ctx, config.RepoPath, token, "push", config.GitRemote, config.GitBranch)
	if err == nil {
		InvalidateCache()
	}
	return out, err
}

// PageDiff returns the uncommitted changes of a page, or "" when it is clean.
func PageDiff(ctx context.Context, path string) (string, error) {
	if _, err := contentPath(config.RepoPath, config.ContentDir, path); err != nil {
		return "", err
	}
	relPath := config.ContentDir + "/" + strings.TrimPrefix(path, "/")
	cmd := exec.CommandContext(ctx, "git", "diff", "HEAD", "--", relPath)
	cmd.Dir = config.RepoPath
	out, err := cmd.CombinedOutput()
	return string(out), err
}
