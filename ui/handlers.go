package ui

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"discscore/adapters/excel"
	"discscore/app"
	"discscore/domain/core"
	"discscore/domain/discrepancy"
	"discscore/domain/samplesize"
	"discscore/internal/errors"
	"discscore/ports"

	"github.com/gin-gonic/gin"
)

// pairRequest is a paired series plus the scoring method
type pairRequest struct {
	Subordinate discrepancy.Series `json:"subordinate" binding:"required"`
	Supervisor  discrepancy.Series `json:"supervisor" binding:"required"`
	Method      discrepancy.Method `json:"method" binding:"required"`
}

// resampleRequest adds the resampling knobs to a pair
type resampleRequest struct {
	pairRequest
	Iterations int    `json:"iterations" binding:"omitempty,gte=1,lte=10000000"`
	Seed       uint64 `json:"seed"`
	Bins       int    `json:"bins" binding:"omitempty,gte=1,lte=1000"`
}

// uploadForm selects the two columns of an uploaded csv or xlsx file
type uploadForm struct {
	SubColumn string             `form:"sub_column" binding:"required"`
	SupColumn string             `form:"sup_column" binding:"required"`
	Sheet     string             `form:"sheet"`
	Method    discrepancy.Method `form:"method" binding:"required"`
}

// runsQuery filters the run listing
type runsQuery struct {
	Kind   string `form:"kind"`
	Limit  int    `form:"limit" binding:"omitempty,gte=1,lte=500"`
	Offset int    `form:"offset" binding:"omitempty,gte=0"`
}

// dualForm is the query string of the report page
type dualForm struct {
	GreenThreshold float64 `form:"t_green,default=0.3" binding:"gte=0,lte=1"`
	RedThreshold   float64 `form:"t_red,default=0.7" binding:"gte=0,lte=1"`
	Accuracy       float64 `form:"accuracy,default=0.02" binding:"gte=0,lte=1"`
	Confidence     float64 `form:"confidence,default=0.9" binding:"gte=0,lte=1"`
	Tolerance      float64 `form:"tolerance,default=0.001" binding:"gte=0,lte=1"`
	NLow           int     `form:"n_low,default=2" binding:"gte=1,lte=1000000"`
	NHigh          int     `form:"n_high,default=10000" binding:"gte=2,lte=10000000"`
	Format         string  `form:"format,default=html" binding:"oneof=html md svg json"`
}

func (f dualForm) query() samplesize.DualQuery {
	return samplesize.DualQuery{
		GreenThreshold: f.GreenThreshold,
		RedThreshold:   f.RedThreshold,
		Accuracy:       f.Accuracy,
		Confidence:     f.Confidence,
		Tolerance:      f.Tolerance,
		NLow:           f.NLow,
		NHigh:          f.NHigh,
	}
}

func (s *Server) handleScore(c *gin.Context) {
	var req pairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}
	score, err := s.container.Discrepancy.Score(c.Request.Context(), req.Subordinate, req.Supervisor, req.Method)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

// handleScoreUpload scores two columns of an uploaded sheet
func (s *Server) handleScoreUpload(c *gin.Context) {
	var form uploadForm
	if err := c.ShouldBind(&form); err != nil {
		s.respondBindError(c, err)
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		s.respondBindError(c, err)
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".csv" && ext != ".xlsx" {
		s.respondError(c, errors.InvalidInput("file must be .csv or .xlsx"))
		return
	}

	dir, err := os.MkdirTemp("", "discscore-upload-")
	if err != nil {
		s.respondError(c, err)
		return
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "pair"+ext)
	if err := c.SaveUploadedFile(file, path); err != nil {
		s.respondError(c, err)
		return
	}

	sub, sup, err := excel.ReadPair(excel.PairConfig{
		FilePath:  path,
		Sheet:     form.Sheet,
		SubColumn: form.SubColumn,
		SupColumn: form.SupColumn,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	score, err := s.container.Discrepancy.Score(c.Request.Context(), sub, sup, form.Method)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": file.Filename, "score": score})
}

func (s *Server) handleBootstrap(c *gin.Context) {
	s.resample(c, s.container.Discrepancy.Bootstrap)
}

func (s *Server) handleShuffle(c *gin.Context) {
	s.resample(c, s.container.Discrepancy.Shuffle)
}

func (s *Server) resample(c *gin.Context, run func(ctx context.Context, req app.ResampleRequest) (*app.ResampleOutcome, error)) {
	var req resampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}
	out, err := run(c.Request.Context(), app.ResampleRequest{
		Subordinate: req.Subordinate,
		Supervisor:  req.Supervisor,
		Method:      req.Method,
		Iterations:  req.Iterations,
		Seed:        req.Seed,
		Bins:        req.Bins,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	if c.Query("scores") != "true" {
		out.Distribution.Scores = nil
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleSolveSingle(c *gin.Context) {
	q := samplesize.DefaultSingleQuery(samplesize.DefaultRedThreshold)
	if err := c.ShouldBindJSON(&q); err != nil {
		s.respondBindError(c, err)
		return
	}
	out, err := s.container.SampleSize.SolveSingle(c.Request.Context(), q)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleSolveDual(c *gin.Context) {
	q := samplesize.DefaultDualQuery()
	if err := c.ShouldBindJSON(&q); err != nil {
		s.respondBindError(c, err)
		return
	}
	out, err := s.container.SampleSize.SolveDual(c.Request.Context(), q)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleSimulate(c *gin.Context) {
	q := samplesize.DefaultSimulationQuery(0, 0, 0, 0, 0)
	q.Simulations = 0 // engine default unless the body sets it
	if err := c.ShouldBindJSON(&q); err != nil {
		s.respondBindError(c, err)
		return
	}
	out, err := s.container.SampleSize.Simulate(c.Request.Context(), q)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleListRuns(c *gin.Context) {
	var q runsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondBindError(c, err)
		return
	}
	runs, err := s.container.Runs.List(c.Request.Context(), ports.RunFilters{Kind: q.Kind, Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs), "ledger": s.container.Runs.Enabled()})
}

func (s *Server) handleGetRun(c *gin.Context) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}
	run, err := s.container.Runs.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}
