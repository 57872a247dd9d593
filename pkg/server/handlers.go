package server

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aleksaelezovic/factstore/internal/errors"
	"github.com/aleksaelezovic/factstore/pkg/rdf"
	"github.com/aleksaelezovic/factstore/pkg/sparql/results"
	"github.com/aleksaelezovic/factstore/pkg/sparql/tripleterm"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// MutationResponse reports the outcome of a write
type MutationResponse struct {
	Affected   int   `json:"affected"`
	Count      int64 `json:"count"`
	DurationMs int64 `json:"durationMs"`
}

// StatsResponse reports store statistics
type StatsResponse struct {
	Triples int64 `json:"triples"`
}

func (s *Server) writeError(c *gin.Context, status int, code string, err error) {
	_ = c.Error(err)
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleStats(c *gin.Context) {
	count, err := s.store.Count()
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	c.JSON(http.StatusOK, StatsResponse{Triples: count})
}

// readTriples parses an N-Triples request body
func (s *Server) readTriples(c *gin.Context) ([]*rdf.Triple, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		s.writeError(c, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", err)
		return nil, false
	}
	triples, err := rdf.ParseNTriples(string(body))
	if err != nil {
		s.writeError(c, http.StatusBadRequest, "PARSE_ERROR", err)
		return nil, false
	}
	return triples, true
}

func (s *Server) handleAddData(c *gin.Context) {
	triples, ok := s.readTriples(c)
	if !ok {
		return
	}

	start := time.Now()
	added, err := s.store.AddAll(triples)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	s.writeMutation(c, added, start)
}

func (s *Server) handleRemoveData(c *gin.Context) {
	triples, ok := s.readTriples(c)
	if !ok {
		return
	}

	start := time.Now()
	removed, err := s.store.RemoveAll(triples)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	s.writeMutation(c, removed, start)
}

func (s *Server) writeMutation(c *gin.Context, affected int, start time.Time) {
	count, err := s.store.Count()
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	c.JSON(http.StatusOK, MutationResponse{
		Affected:   affected,
		Count:      count,
		DurationMs: time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleClear(c *gin.Context) {
	if err := s.store.Clear(); err != nil {
		s.writeError(c, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleMatch serves GET /match?s=&p=&o= with N-Triples encoded terms.
// Omitted parameters are wildcards.
func (s *Server) handleMatch(c *gin.Context) {
	var subject rdf.Subject
	var predicate *rdf.NamedNode
	var object rdf.Term

	if raw := c.Query("s"); raw != "" {
		term, err := rdf.ParseTerm(raw)
		if err != nil {
			s.writeError(c, http.StatusBadRequest, "INVALID_TERM", errors.Wrap(err, "s"))
			return
		}
		sub, ok := term.(rdf.Subject)
		if !ok {
			s.writeError(c, http.StatusBadRequest, "INVALID_TERM", errors.New("s: literal cannot be a subject"))
			return
		}
		subject = sub
	}
	if raw := c.Query("p"); raw != "" {
		term, err := rdf.ParseTerm(raw)
		if err != nil {
			s.writeError(c, http.StatusBadRequest, "INVALID_TERM", errors.Wrap(err, "p"))
			return
		}
		node, ok := term.(*rdf.NamedNode)
		if !ok {
			s.writeError(c, http.StatusBadRequest, "INVALID_TERM", errors.New("p: predicate must be an IRI"))
			return
		}
		predicate = node
	}
	if raw := c.Query("o"); raw != "" {
		term, err := rdf.ParseTerm(raw)
		if err != nil {
			s.writeError(c, http.StatusBadRequest, "INVALID_TERM", errors.Wrap(err, "o"))
			return
		}
		object = term
	}

	triples, err := s.store.Match(subject, predicate, object)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}

	solutions := make([]results.Solution, len(triples))
	for i, triple := range triples {
		solutions[i] = results.Solution{
			"s": triple.Subject(),
			"p": triple.Predicate(),
			"o": triple.Object(),
		}
	}
	s.writeSolutions(c, solutions, []string{"s", "p", "o"})
}

func (s *Server) handleSubjectsByUUID(c *gin.Context) {
	subjects, err := s.store.FindSubjectsByUUID(c.Param("uuid"))
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, "STORE_ERROR", err)
		return
	}

	solutions := make([]results.Solution, len(subjects))
	for i, subject := range subjects {
		solutions[i] = results.Solution{"subject": subject}
	}
	s.writeSolutions(c, solutions, []string{"subject"})
}

// writeSolutions serializes in the format named by ?format or the Accept
// header. ?pretty and ?indent override the server defaults.
func (s *Server) writeSolutions(c *gin.Context, solutions []results.Solution, vars []string) {
	format := results.NegotiateFormat(c.GetHeader("Accept"))
	if name := c.Query("format"); name != "" {
		parsed, err := results.ParseFormat(name)
		if err != nil {
			s.writeError(c, http.StatusNotAcceptable, "UNSUPPORTED_FORMAT", err)
			return
		}
		format = parsed
	}

	opts := s.results
	opts.Variables = vars
	if raw := c.Query("pretty"); raw != "" {
		pretty, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(c, http.StatusBadRequest, "INVALID_PARAMETER", errors.Wrap(err, "pretty"))
			return
		}
		opts.Pretty = pretty
	}
	if raw := c.Query("indent"); raw != "" {
		indent, err := strconv.Atoi(raw)
		if err != nil || indent < 0 {
			s.writeError(c, http.StatusBadRequest, "INVALID_PARAMETER", errors.Newf("indent: invalid value %q", raw))
			return
		}
		opts.Indent = indent
	}

	body, err := results.Serialize(solutions, format, opts)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, "FORMAT_ERROR", err)
		return
	}
	c.Data(http.StatusOK, format.ContentType(), []byte(body))
}

func (s *Server) handleTransform(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		s.writeError(c, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", err)
		return
	}

	out, err := s.transformer.Transform(string(body))
	switch {
	case errors.Is(err, tripleterm.ErrUnclosedTripleTerm):
		s.writeError(c, http.StatusUnprocessableEntity, "UNCLOSED_TRIPLE_TERM", err)
		return
	case errors.Is(err, tripleterm.ErrCollectionSubject):
		s.writeError(c, http.StatusUnprocessableEntity, "COLLECTION_SUBJECT", err)
		return
	case errors.Is(err, tripleterm.ErrIterationLimit):
		s.writeError(c, http.StatusUnprocessableEntity, "ITERATION_LIMIT", err)
		return
	case err != nil:
		s.writeError(c, http.StatusInternalServerError, "TRANSFORM_ERROR", err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(out))
}
