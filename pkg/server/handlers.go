package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ccollicutt/chatlens/pkg/analyzer"
	"github.com/ccollicutt/chatlens/pkg/output"
	"github.com/ccollicutt/chatlens/pkg/parser"
)

// uploadField is the multipart form field holding the export.
const uploadField = "file"

// errorResponse writes err with the status it maps to.
func errorResponse(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, parser.ErrInvalidExport):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": parser.ErrInvalidExport.Error()})
	case errors.As(err, &tooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("export exceeds %d bytes", tooLarge.Limit)})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// readExport returns the uploaded export text and its name. The export is
// taken from the multipart field "file" when present, otherwise from the
// raw request body.
func readExport(c *gin.Context) (string, string, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile(uploadField)
		if err != nil {
			return "", "", fmt.Errorf("reading form field %q: %w", uploadField, err)
		}
		f, err := fh.Open()
		if err != nil {
			return "", "", err
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return "", "", err
		}
		text, err := parser.DecodeExport(data)
		return text, fh.Filename, err
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", "", err
	}
	text, err := parser.DecodeExport(data)
	return text, "upload", err
}

func (s *Service) parseUpload(c *gin.Context) (*parser.Result, string, bool) {
	text, name, err := readExport(c)
	if err != nil {
		errorResponse(c, err)
		return nil, "", false
	}

	res, err := s.parser.ParseDetailed(text)
	if err != nil {
		log.Debug().Err(err).Str("export", name).Msg("rejected export")
		errorResponse(c, err)
		return nil, "", false
	}
	return res, name, true
}

func (s *Service) handleAnalyze(c *gin.Context) {
	res, name, ok := s.parseUpload(c)
	if !ok {
		return
	}

	opts := []analyzer.AnalyzerOption{
		analyzer.WithParticipant(c.DefaultQuery("participant", analyzer.Overall)),
	}
	if only := c.Query("only"); only != "" {
		opts = append(opts, analyzer.WithAggregates(strings.Split(only, ",")))
	}

	a, err := analyzer.NewAnalyzer(s.cfg, opts...)
	if err != nil {
		errorResponse(c, err)
		return
	}

	result, err := a.Analyze(c.Request.Context(), res.Records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, output.NewReport(result, "", []output.Source{output.NewSource(name, res)}))
}

func (s *Service) handleParticipants(c *gin.Context) {
	res, _, ok := s.parseUpload(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": analyzer.Participants(res.Records)})
}

func (s *Service) handleDetect(c *gin.Context) {
	text, _, err := readExport(c)
	if err != nil {
		errorResponse(c, err)
		return
	}

	result := s.detector.DetectFromText(text)
	resp := gin.H{
		"supported":     result.Supported(),
		"sampled_lines": result.SampledLines,
		"parsed_lines":  result.ParsedLines,
	}
	if best := result.BestMatch(); best != nil {
		resp["layout"] = best.Layout.Name
		resp["confidence"] = best.Confidence
		if best.Layout.Hint != "" {
			resp["hint"] = best.Layout.Hint
		}
	}
	if result.AmbiguityNote != "" {
		resp["ambiguity_note"] = result.AmbiguityNote
	}
	c.JSON(http.StatusOK, resp)
}
