package ui

import (
	"net/http"
	"strconv"

	"edascope/domain/core"
	"edascope/domain/dataset"
	apperrors "edascope/internal/errors"
	"edascope/internal/report"
	"edascope/internal/session"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
)

type selectTargetRequest struct {
	Target string `json:"target" binding:"required"`
}

type sessionResponse struct {
	Session  session.Overview      `json:"session"`
	Dataset  *dataset.DatasetInfo `json:"dataset,omitempty"`
	Recorded bool                 `json:"recorded"`
}

// respondError writes a domain or application error as JSON
func (s *Server) respondError(c *gin.Context, err error) {
	appErr := apperrors.FromDomain(err)
	status := apperrors.HTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("[%s] %v", c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
}

// session resolves the :id path parameter
func (s *Server) session(c *gin.Context) (*session.Session, bool) {
	id, err := core.ParseSessionID(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

// handleCreateSession accepts a multipart upload (file, target, sheet) or,
// without a file, opens a session on the configured default dataset.
func (s *Server) handleCreateSession(c *gin.Context) {
	if limit := s.config.Server.MaxUploadBytes; limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	target := c.PostForm("target")
	if target == "" {
		s.respondError(c, core.NewParameterError("target", "required"))
		return
	}

	source := "upload"
	var table *dataset.Table
	header, err := c.FormFile("file")
	switch {
	case err == nil:
		f, openErr := header.Open()
		if openErr != nil {
			s.respondError(c, core.NewParameterError("file", openErr.Error()))
			return
		}
		defer f.Close()
		table, err = s.loadUpload(header.Filename, c.PostForm("sheet"), f)
	case errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart):
		source = "file"
		table, err = s.getDefaultTable()
	default:
		err = core.NewParameterError("file", err.Error())
	}
	if err != nil {
		s.respondError(c, err)
		return
	}

	sess, err := s.sessions.Create(table, target)
	if err != nil {
		s.respondError(c, err)
		return
	}

	resp := sessionResponse{Session: sess.Overview()}
	if s.catalog != nil {
		info := dataset.NewDatasetInfo(table, source)
		if err := s.catalog.Record(c.Request.Context(), info); err != nil {
			s.logger.Warn("Catalog record for %s failed: %v", table.Name, err)
		} else {
			resp.Dataset = info
			resp.Recorded = true
		}
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleSelectTarget(c *gin.Context) {
	id, err := core.ParseSessionID(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	var req selectTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, core.NewParameterError("target", err.Error()))
		return
	}
	sess, err := s.sessions.Replace(id, req.Target)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{Session: sess.Overview()})
}

func (s *Server) handleCloseSession(c *gin.Context) {
	id, err := core.ParseSessionID(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.sessions.Close(id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleOverview(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Overview())
}

func (s *Server) handleProfile(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	v, err := sess.Profile(c.Param("column"))
	s.write(c, v, err)
}

func (s *Server) handleRelationship(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	v, err := sess.Relate(c.Param("feature"))
	s.write(c, v, err)
}

func (s *Server) handleCorrelations(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	k := s.config.Engine.TopKDefault
	if raw := c.Query("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(c, core.NewParameterError("k", "must be an integer"))
			return
		}
		k = n
	}
	k = s.config.Engine.ClampK(k)
	entries, err := sess.TopKCorrelated(k)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"target": sess.Target(), "k": k, "correlations": entries})
}

func (s *Server) handleCorrelationMatrix(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	v, err := sess.CorrelationMatrix()
	s.write(c, v, err)
}

func (s *Server) handleRedundancy(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	threshold := s.config.Engine.RedundancyThreshold
	if raw := c.Query("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.respondError(c, core.NewParameterError("threshold", "must be a number"))
			return
		}
		threshold = v
	}
	v, err := sess.RedundantPairs(threshold)
	s.write(c, v, err)
}

func (s *Server) handlePair(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	a, b := c.Query("a"), c.Query("b")
	if a == "" || b == "" {
		s.respondError(c, core.NewParameterError("a, b", "both features are required"))
		return
	}
	v, err := sess.PairCorrelation(a, b)
	s.write(c, v, err)
}

func (s *Server) handleImpact(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	v, err := sess.Impact(c.Param("feature"))
	s.write(c, v, err)
}

func (s *Server) handleCrosstab(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	v, err := sess.Crosstab(c.Param("feature"))
	s.write(c, v, err)
}

func (s *Server) handleClasses(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	classes, err := sess.ClassDistribution()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"target": sess.Target(), "classes": classes})
}

// handleReport renders the markdown report, or HTML with ?format=html
func (s *Server) handleReport(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	opts := report.DefaultOptions()
	opts.TopK = s.config.Engine.TopKDefault
	opts.Threshold = s.config.Engine.RedundancyThreshold

	md, err := report.Generate(sess, opts)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if c.Query("format") == "html" {
		c.Data(http.StatusOK, "text/html; charset=utf-8", report.ToHTML(md))
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", md)
}

func (s *Server) handleListDatasets(c *gin.Context) {
	if s.catalog == nil {
		c.JSON(http.StatusOK, gin.H{"datasets": []*dataset.DatasetInfo{}, "catalog": false})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	infos, err := s.catalog.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.respondError(c, apperrors.DatabaseError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"datasets": infos, "catalog": true})
}

// write responds with v, or with err when set
func (s *Server) write(c *gin.Context, v any, err error) {
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}
