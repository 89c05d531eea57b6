package main

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rhyrak/go-allocate/internal/allocator"
	"github.com/rhyrak/go-allocate/internal/logger"
	"github.com/rhyrak/go-allocate/internal/repository"
)

type server struct {
	cfg     *allocator.Configuration
	runs    *repository.RunRepository
	pending sync.WaitGroup
}

var uploadFields = []string{"students", "courses", "coursegroups"}

func newServer(cfg *allocator.Configuration, runs *repository.RunRepository) *server {
	return &server{cfg: cfg, runs: runs}
}

func (s *server) routes(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/allocations", s.handleGetAllocations)
	r.GET("/allocations/:id", s.handleGetAllocationWithId)
	r.DELETE("/allocations/:id", s.handleDeleteAllocationWithId)
	r.POST("/allocations", s.handlePostAllocation)
}

func (s *server) handleGetAllocations(ctx *gin.Context) {
	runs, err := s.runs.List(ctx.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("list runs")
		ctx.Status(http.StatusInternalServerError)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"allocations": runs,
	})
}

func (s *server) handleGetAllocationWithId(ctx *gin.Context) {
	run, err := s.runs.Get(ctx.Request.Context(), ctx.Param("id"))
	if errors.Is(err, repository.ErrRunNotFound) {
		ctx.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("get run")
		ctx.Status(http.StatusInternalServerError)
		return
	}
	ctx.JSON(http.StatusOK, run)
}

func (s *server) handleDeleteAllocationWithId(ctx *gin.Context) {
	err := s.runs.Delete(ctx.Request.Context(), ctx.Param("id"))
	if errors.Is(err, repository.ErrRunNotFound) {
		ctx.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("delete run")
		ctx.Status(http.StatusInternalServerError)
		return
	}
	s.removeUploads(ctx.Param("id"))
	ctx.Status(http.StatusNoContent)
}

func (s *server) handlePostAllocation(ctx *gin.Context) {
	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.String(http.StatusBadRequest, err.Error())
		return
	}
	if form.File["students"] == nil || form.File["courses"] == nil || form.File["coursegroups"] == nil {
		ctx.String(http.StatusBadRequest, "missing file(s): students, courses and coursegroups are required")
		return
	}

	cfg := *s.cfg
	if v := ctx.PostForm("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			ctx.String(http.StatusBadRequest, "invalid seed")
			return
		}
		cfg.Seed = seed
	}

	run, err := s.runs.Create(ctx.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("create run")
		ctx.Status(http.StatusInternalServerError)
		return
	}

	uploads := map[string]*string{
		"students":     &cfg.StudentsFile,
		"courses":      &cfg.CoursesFile,
		"coursegroups": &cfg.CourseGroupsFile,
	}
	for field, target := range uploads {
		file := form.File[field][0]
		path := s.uploadPath(run.ID, field)
		if err := ctx.SaveUploadedFile(file, path); err != nil {
			logger.Error().Err(err).Str("field", field).Msg("save upload")
			if err := s.runs.Fail(ctx.Request.Context(), run.ID, err.Error()); err != nil {
				logger.Error().Err(err).Str("run", run.ID).Msg("Failed to store run")
			}
			s.removeUploads(run.ID)
			ctx.Status(http.StatusInternalServerError)
			return
		}
		*target = path
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.allocate(run.ID, cfg)
	}()

	ctx.JSON(http.StatusOK, gin.H{
		"id": run.ID,
	})
}

func (s *server) uploadPath(runID, field string) string {
	return filepath.Join(s.cfg.UploadDir, runID+"-"+field+".csv")
}

// removeUploads deletes the input files saved for a run. Missing files are
// not an error.
func (s *server) removeUploads(runID string) {
	for _, field := range uploadFields {
		err := os.Remove(s.uploadPath(runID, field))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn().Err(err).Str("run", runID).Str("field", field).Msg("Failed to remove upload")
		}
	}
}
