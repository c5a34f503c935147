// Package runner executes the download workflow in the background and owns
// the job record from start through its terminal state.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Joyersch/jellydump/internal/client/apprise"
	"github.com/Joyersch/jellydump/internal/config"
	"github.com/Joyersch/jellydump/internal/downloader"
	"github.com/Joyersch/jellydump/internal/progress"
	"github.com/Joyersch/jellydump/internal/registry"
	"github.com/Joyersch/jellydump/pkg/logger"
)

const msgCompleted = "Download completed successfully"

// Runner drives one job at a time to completion. The registry's single-active
// guarantee means Start is never called while a previous run is still live.
type Runner struct {
	reg      *registry.Registry
	dl       downloader.Downloader
	apprise  *apprise.Client
	basePath string
	format   string
	// container is the target container; completed episodes are counted by
	// its extension.
	container string
}

func New(cfg *config.Config, reg *registry.Registry, dl downloader.Downloader, appriseClient *apprise.Client) *Runner {
	return &Runner{
		reg:       reg,
		dl:        dl,
		apprise:   appriseClient,
		basePath:  cfg.Library.BasePath,
		format:    cfg.Download.Format,
		container: cfg.Download.Container,
	}
}

// Start spawns the download workflow for the given job and returns
// immediately. The spawned goroutine writes its own terminal state; the
// caller never waits on it.
func (r *Runner) Start(jobID string, req registry.Request) {
	go r.run(jobID, req)
}

func (r *Runner) run(jobID string, req registry.Request) {
	// A panic anywhere below must still land the job in "failed" — a record
	// stuck in "running" would block job creation forever.
	defer func() {
		if rec := recover(); rec != nil {
			logger.Errorf("❌ Job %s panicked: %v", jobID, rec)
			r.fail(jobID, req, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	now := time.Now().UTC()
	r.reg.Update(jobID, registry.Update{
		Status:          registry.Ptr(registry.StatusRunning),
		StartedAt:       &now,
		ProgressPercent: registry.Ptr(0),
		CurrentTitle:    registry.Ptr(""),
		Speed:           registry.Ptr(""),
	})

	logger.Infof("⬇️  Job %s started: %s S%02d (%s)", jobID, req.Name, req.Season, req.URL)

	showDir := filepath.Join(r.basePath, ShowFolderName(req.Name, req.IMDBID))
	if err := os.MkdirAll(showDir, 0755); err != nil {
		r.fail(jobID, req, fmt.Sprintf("create show folder: %v", err))
		return
	}

	// Exclusive create: an existing season folder means a previous run (or
	// another tool) already owns it, and we never overwrite or resume.
	seasonDir := filepath.Join(showDir, SeasonFolderName(req.Season))
	if err := os.Mkdir(seasonDir, 0755); err != nil {
		if os.IsExist(err) {
			r.fail(jobID, req, "Season folder already exists")
		} else {
			r.fail(jobID, req, fmt.Sprintf("create season folder: %v", err))
		}
		return
	}

	opts := downloader.Options{
		OutputTemplate: filepath.Join(seasonDir, OutputTemplate(req.Name, req.Season)),
		Format:         r.format,
		Container:      r.container,
	}
	hook := progress.Hook(r.reg, jobID, seasonDir, "."+r.container)

	if err := r.dl.Download(context.Background(), req.URL, opts, hook); err != nil {
		r.fail(jobID, req, err.Error())
		return
	}

	finished := time.Now().UTC()
	r.reg.Update(jobID, registry.Update{
		Status:          registry.Ptr(registry.StatusFinished),
		FinishedAt:      &finished,
		ResultPath:      &seasonDir,
		Message:         registry.Ptr(msgCompleted),
		ProgressPercent: registry.Ptr(100),
		CurrentTitle:    registry.Ptr(""),
		Speed:           registry.Ptr(""),
	})

	logger.Infof("✅ Job %s finished: %s", jobID, seasonDir)
	r.notifySuccess(req, seasonDir)
}

func (r *Runner) fail(jobID string, req registry.Request, reason string) {
	finished := time.Now().UTC()
	r.reg.Update(jobID, registry.Update{
		Status:     registry.Ptr(registry.StatusFailed),
		FinishedAt: &finished,
		Error:      &reason,
	})

	logger.Errorf("❌ Job %s failed: %s", jobID, reason)
	r.notifyFailure(req, reason)
}

func (r *Runner) notifySuccess(req registry.Request, seasonDir string) {
	if r.apprise == nil {
		return
	}
	title := fmt.Sprintf("✅ %s S%02d downloaded", req.Name, req.Season)
	if err := r.apprise.NotifySuccess(title, seasonDir); err != nil {
		logger.Warnf("⚠️ Notification failed: %v", err)
	}
}

func (r *Runner) notifyFailure(req registry.Request, reason string) {
	if r.apprise == nil {
		return
	}
	title := fmt.Sprintf("❌ %s S%02d failed", req.Name, req.Season)
	if err := r.apprise.NotifyError(title, reason); err != nil {
		logger.Warnf("⚠️ Notification failed: %v", err)
	}
}
