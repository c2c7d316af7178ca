package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/S1riyS/tfs/internal/models"
	"github.com/S1riyS/tfs/internal/pkg/kerrors"
	"github.com/S1riyS/tfs/internal/repository"
	"github.com/S1riyS/tfs/internal/service"
	"github.com/S1riyS/tfs/pkg/binary"
	"github.com/S1riyS/tfs/pkg/database/postgresql"
	"github.com/S1riyS/tfs/pkg/logging"
	"github.com/S1riyS/tfs/pkg/logging/slogext"
)

type Handler struct {
	registry   *service.Registry
	importer   *service.Importer
	maxReadLen int

	// nil unless the external-file database is enabled
	db     postgresql.Pool
	source repository.SourceRepository

	metrics *Metrics
}

type Option func(*Handler)

func WithSource(db postgresql.Pool, source repository.SourceRepository) Option {
	return func(h *Handler) {
		h.db = db
		h.source = source
	}
}

func WithMetrics(m *Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// NewHandler serves the filesystems of registry. Reads are capped at
// maxReadLen bytes, which callers set to the block size.
func NewHandler(registry *service.Registry, importer *service.Importer, maxReadLen int, opts ...Option) *Handler {
	h := &Handler{
		registry:   registry,
		importer:   importer,
		maxReadLen: maxReadLen,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) HandleInit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	const op = "handler.HandleInit"

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// An empty token asks the server to pick one.
	token := r.URL.Query().Get("token")

	inst, err := h.registry.Create(ctx, token)
	if err != nil {
		h.fail(ctx, w, op, err)
		return
	}

	h.metrics.observe(op, 0)
	binary.WriteResponse(w, 0, []byte(inst.Token))
}

func (h *Handler) HandleDestroy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	const op = "handler.HandleDestroy"

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		h.invalid(w, op)
		return
	}

	ctx = logging.MakeContextWithFSToken(ctx, token)
	if err := h.registry.Destroy(ctx, token); err != nil {
		h.fail(ctx, w, op, err)
		return
	}

	h.metrics.observe(op, 0)
	binary.WriteResponse(w, 0, nil)
}

func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleOpen"

	inst, ctx, ok := h.instance(w, r, op)
	if !ok {
		return
	}

	path := r.URL.Query().Get("path")
	modeStr := r.URL.Query().Get("mode")
	if path == "" {
		h.invalid(w, op)
		return
	}

	var mode uint64
	if modeStr != "" {
		var err error
		mode, err = strconv.ParseUint(modeStr, 10, 32)
		if err != nil {
			h.invalid(w, op)
			return
		}
	}

	var fd int64
	err := inst.Do(func(svc service.FileSystemService) error {
		var err error
		fd, err = svc.Open(ctx, path, models.OpenMode(mode))
		return err
	})
	if err != nil {
		h.fail(ctx, w, op, err)
		return
	}

	h.metrics.observe(op, 0)
	binary.WriteInt64Response(w, 0, fd)
}

func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleClose"

	inst, ctx, ok := h.instance(w, r, op)
	if !ok {
		return
	}

	fd, err := strconv.ParseInt(r.URL.Query().Get("fd"), 10, 64)
	if err != nil {
		h.invalid(w, op)
		return
	}

	err = inst.Do(func(svc service.FileSystemService) error {
		return svc.Close(ctx, fd)
	})
	if err != nil {
		h.fail(ctx, w, op, err)
		return
	}

	h.metrics.observe(op, 0)
	binary.WriteResponse(w, 0, nil)
}

func (h *Handler) HandleRead(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleRead"

	inst, ctx, ok := h.instance(w, r, op)
	if !ok {
		return
	}

	fd, err := strconv.ParseInt(r.URL.Query().Get("fd"), 10, 64)
	if err != nil {
		h.invalid(w, op)
		return
	}

	length, err := strconv.ParseUint(r.URL.Query().Get("len"), 10, 64)
	if err != nil {
		h.invalid(w, op)
		return
	}
	if length > uint64(h.maxReadLen) {
		length = uint64(h.maxReadLen)
	}

	buffer := make([]byte, length)
	var read int
	err = inst.Do(func(svc service.FileSystemService) error {
		var err error
		read, err = svc.Read(ctx, fd, buffer)
		return err
	})
	if err != nil {
		h.fail(ctx, w, op, err)
		return
	}

	h.metrics.observe(op, 0)
	// Only the bytes actually read
	binary.WriteResponse(w, 0, buffer[:read])
}

func (h *Handler) HandleWrite(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleWrite"

	inst, ctx, ok := h.instance(w, r, op)
	if !ok {
		return
	}
	logger := logging.GetLoggerFromContextWithOp(ctx, op)

	fd, err := strconv.ParseInt(r.URL.Query().Get("fd"), 10, 64)
	if err != nil {
		h.invalid(w, op)
		return
	}

	data, err := base64.StdEncoding.DecodeString(r.URL.Query().Get("data"))
	if err != nil {
		logger.Warn("Failed to decode base64 data", slogext.Err(err))
		h.invalid(w, op)
		return
	}

	// len is optional and may only shorten the payload
	if lenStr := r.URL.Query().Get("len"); lenStr != "" {
		length, err := strconv.ParseUint(lenStr, 10, 64)
		if err != nil || length > uint64(len(data)) {
			logger.Warn("Buffer size is less than requested length",
				slog.String("requested_length", lenStr),
				slog.Int("buffer_size", len(data)))
			h.invalid(w, op)
			return
		}
		data = data[:length]
	}

	var written int
	err = inst.Do(func(svc service.FileSystemService) error {
		var err error
		written, err = svc.Write(ctx, fd, data)
		return err
	})
	if err != nil {
		h.fail(ctx, w, op, err)
		return
	}

	h.metrics.observe(op, 0)
	binary.WriteInt64Response(w, 0, int64(written))
}

func (h *Handler) HandleSeek(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleSeek"

	inst, ctx, ok := h.instance(w, r, op)
	if !ok {
		return
	}

	fd, err := strconv.ParseInt(r.URL.Query().Get("fd"), 10, 64)
	if err != nil {
		h.invalid(w, op)
		return
	}
	offset, err := strconv.ParseInt(r.URL.Query().Get("offset"), 10, 64)
	if err != nil {
		h.invalid(w, op)
		return
	}

	var pos int64
	err = inst.Do(func(svc service.FileSystemService) error {
		var err error
		pos, err = svc.Seek(ctx, fd, offset)
		return err
	})
	if err != nil {
		h.fail(ctx, w, op, err)
		return
	}

	h.metrics.observe(op, 0)
	binary.WriteInt64Response(w, 0, pos)
}

func (h *Handler) HandleLink(w http.ResponseWriter, r *http.Request) {
	h.handleLinkOp(w, r, "handler.HandleLink", service.FileSystemService.Link)
}

func (h *Handler) HandleSymLink(w http.ResponseWriter, r *http.Request) {
	h.handleLinkOp(w, r, "handler.HandleSymLink", service.FileSystemService.SymLink)
}

func (h *Handler) handleLinkOp(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	fn func(service.FileSystemService, context.Context, string, string) error,
) {
	inst, ctx, ok := h.instance(w, r, op)
	if !ok {
		return
	}

	target := r.URL.Query().Get("target")
	name := r.URL.Query().Get("name")
	if target == "" || name == "" {
		h.invalid(w, op)
		return
	}

	err := inst.Do(func(svc service.FileSystemService) error {
		return fn(svc, ctx, target, name)
	})
	if err != nil {
		h.fail(ctx, w, op, err)
		return
	}

	h.metrics.observe(op, 0)
	binary.WriteResponse(w, 0, nil)
}

func (h *Handler) HandleUnlink(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleUnlink"

	inst, ctx, ok := h.instance(w, r, op)
	if !ok {
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		h.invalid(w, op)
		return
	}

	err := inst.Do(func(svc service.FileSystemService) error {
		return svc.Unlink(ctx, path)
	})
	if err != nil {
		h.fail(ctx, w, op, err)
		return
	}

	h.metrics.observe(op, 0)
	binary.WriteResponse(w, 0, nil)
}

func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleLookup"

	inst, ctx, ok := h.instance(w, r, op)
	if !ok {
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		h.invalid(w, op)
		return
	}

	var meta *models.NodeMeta
	err := inst.Do(func(svc service.FileSystemService) error {
		var err error
		meta, err = svc.Lookup(ctx, path)
		return err
	})
	if err != nil {
		h.fail(ctx, w, op, err)
		return
	}

	data, err := binary.EncodeNodeMeta(meta)
	if err != nil {
		h.fail(ctx, w, op, err)
		return
	}

	h.metrics.observe(op, 0)
	binary.WriteResponse(w, 0, data)
}

func (h *Handler) HandleIterateDir(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleIterateDir"

	inst, ctx, ok := h.instance(w, r, op)
	if !ok {
		return
	}

	offset, err := strconv.ParseUint(r.URL.Query().Get("offset"), 10, 64)
	if err != nil {
		h.invalid(w, op)
		return
	}

	var dirent *models.Dirent
	err = inst.Do(func(svc service.FileSystemService) error {
		var err error
		dirent, err = svc.IterateDir(ctx, &offset)
		return err
	})
	if err != nil {
		h.fail(ctx, w, op, err)
		return
	}

	data, err := binary.EncodeDirent(dirent)
	if err != nil {
		h.fail(ctx, w, op, err)
		return
	}

	h.metrics.observe(op, 0)
	binary.WriteResponse(w, 0, data)
}

func (h *Handler) HandleCountLinks(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleCountLinks"

	inst, ctx, ok := h.instance(w, r, op)
	if !ok {
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		h.invalid(w, op)
		return
	}

	var count int
	err := inst.Do(func(svc service.FileSystemService) error {
		var err error
		count, err = svc.CountLinks(ctx, path)
		return err
	})
	if err != nil {
		h.fail(ctx, w, op, err)
		return
	}

	h.metrics.observe(op, 0)
	binary.WriteUint32Response(w, 0, uint32(count))
}

func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	const op = "handler.HandleImport"

	inst, ctx, ok := h.instance(w, r, op)
	if !ok {
		return
	}

	if h.db == nil || h.source == nil {
		h.metrics.observe(op, -kerrors.EOPNOTSUPP)
		binary.WriteResponse(w, -kerrors.EOPNOTSUPP, nil)
		return
	}

	source := r.URL.Query().Get("source")
	dest := r.URL.Query().Get("dest")
	if source == "" || dest == "" {
		h.invalid(w, op)
		return
	}

	var written int64
	err := inst.Do(func(svc service.FileSystemService) error {
		var err error
		written, err = h.importer.ImportFromSource(ctx, svc, h.db, h.source, source, dest)
		return err
	})
	if err != nil {
		h.fail(ctx, w, op, err)
		return
	}

	h.metrics.observe(op, 0)
	binary.WriteInt64Response(w, 0, written)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok","service":"tfs-server"}`))
}

// instance checks the method, resolves the token parameter and returns the
// request context tagged with it. On failure the response is already written.
func (h *Handler) instance(w http.ResponseWriter, r *http.Request, op string) (*service.Instance, context.Context, bool) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, nil, false
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		h.invalid(w, op)
		return nil, nil, false
	}

	ctx = logging.MakeContextWithFSToken(ctx, token)
	inst, err := h.registry.Get(token)
	if err != nil {
		h.fail(ctx, w, op, err)
		return nil, nil, false
	}

	return inst, ctx, true
}

func (h *Handler) invalid(w http.ResponseWriter, op string) {
	h.metrics.observe(op, kerrors.EINVAL_NEG)
	binary.WriteResponse(w, kerrors.EINVAL_NEG, nil)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	code := mapErrorToCode(err)
	if code == kerrors.ENOMEM_NEG {
		logger := logging.GetLoggerFromContextWithOp(ctx, op)
		logger.Error("Unexpected error", slogext.Err(err))
	}

	h.metrics.observe(op, code)
	binary.WriteResponse(w, code, nil)
}

func mapErrorToCode(err error) int64 {
	var serviceErr *service.ServiceError
	if errors.As(err, &serviceErr) {
		return kerrors.Neg(serviceErr.Code)
	}
	// ENOMEM by default
	return kerrors.ENOMEM_NEG
}
