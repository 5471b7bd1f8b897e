// Package rest exposes the interpreter over HTTP.
package rest

import (
	"errors"
	"expvar"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/inbucket/mimetpl/pkg/filter"
	"github.com/inbucket/mimetpl/pkg/interpreter"
	"github.com/inbucket/mimetpl/pkg/metric"
	"github.com/inbucket/mimetpl/pkg/mimetree"
	"github.com/inbucket/mimetpl/pkg/server/web"
	"github.com/rs/zerolog/log"
)

// Query parameters accepted by InterpretV1.
const (
	ParamHeaders        = "headers"
	ParamFilter         = "filter"
	ParamMultiparts     = "multiparts"
	ParamStripSignature = "stripsignature"
)

var (
	expRequests = new(expvar.Int)
	expFailures = new(expvar.Int)
	expBytesIn  = new(expvar.Int)
)

func init() {
	m := expvar.NewMap("interpret")
	m.Set("Requests", expRequests)
	m.Set("Failures", expFailures)
	m.Set("BytesIn", expBytesIn)

	// Last hour of request counts, one sample per minute.
	hist := metric.NewHistory(expRequests, 61)
	m.Set("RequestsHist", hist)
	metric.AddTickerFunc(hist.Sample)
}

// InterpretV1 renders the raw message in the request body as a template.
func InterpretV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	expRequests.Add(1)
	defer func() {
		if err != nil {
			expFailures.Add(1)
		}
	}()

	opts, err := queryOptions(req.URL.Query())
	if err != nil {
		return web.Error(http.StatusBadRequest, err)
	}
	// Requests never write to the server's disk.
	opts = append(opts, interpreter.WithSaveAttachments(false))

	body := io.Reader(req.Body)
	if ctx.MaxBytes > 0 {
		body = http.MaxBytesReader(w, req.Body, ctx.MaxBytes)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return web.Error(http.StatusRequestEntityTooLarge, err)
		}
		return web.Error(http.StatusBadRequest, fmt.Errorf("read request body: %w", err))
	}

	expBytesIn.Add(int64(len(raw)))

	out, err := ctx.Interpreter.With(opts...).InterpretBytes(req.Context(), raw)
	if err != nil {
		var perr *mimetree.ParseError
		if errors.As(err, &perr) {
			return web.Error(http.StatusBadRequest, err)
		}
		return err
	}
	log.Debug().Str("module", "rest").Int("in", len(raw)).Int("out", len(out)).
		Msg("Interpreted message")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err = io.WriteString(w, out)
	return err
}

// queryOptions converts request query parameters into interpreter options. Absent parameters
// keep the server configuration.
func queryOptions(q url.Values) ([]interpreter.Option, error) {
	var opts []interpreter.Option
	if q.Has(ParamHeaders) {
		opts = append(opts, interpreter.WithHeaders(interpreter.ParseHeaderPolicy(q.Get(ParamHeaders))))
	}
	if q.Has(ParamFilter) {
		p, err := filter.Parse(q.Get(ParamFilter))
		if err != nil {
			return nil, err
		}
		opts = append(opts, interpreter.WithFilter(p))
	}
	if q.Has(ParamMultiparts) {
		b, err := parseBool(ParamMultiparts, q.Get(ParamMultiparts))
		if err != nil {
			return nil, err
		}
		opts = append(opts, interpreter.WithMultiparts(b))
	}
	if q.Has(ParamStripSignature) {
		b, err := parseBool(ParamStripSignature, q.Get(ParamStripSignature))
		if err != nil {
			return nil, err
		}
		opts = append(opts, interpreter.WithStripSignature(b))
	}
	return opts, nil
}

// parseBool treats a bare parameter as true.
func parseBool(name, v string) (bool, error) {
	if v == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parameter %s: %q is not a boolean", name, v)
	}
	return b, nil
}
