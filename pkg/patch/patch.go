package patch

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/joshuapare/tzpatch/internal/buf"
	"github.com/joshuapare/tzpatch/internal/logger"
	"github.com/joshuapare/tzpatch/internal/writer"
	"github.com/joshuapare/tzpatch/pkg/sig"
)

// Patch describes one fixed-length rewrite anchored on a signature.
type Patch struct {
	Name      string
	Signature sig.Signature
	Mask      sig.Mask // nil for exact comparison

	// Start is the anchor offset where the scan begins. MaxScan bounds the
	// number of candidate offsets; zero scans to the end.
	Start   int
	MaxScan int

	// Delta is added to the match offset to get the first byte overwritten.
	Delta int

	// Replacement is written element-wise over the span; the file length
	// never changes.
	Replacement []byte

	// Strict fails when the signature matches more than once.
	Strict bool
}

// Validate checks the patch definition without touching any file.
func (p Patch) Validate() error {
	if len(p.Signature) == 0 {
		return sig.ErrEmptySignature
	}
	if err := sig.CheckMask(p.Signature, p.Mask); err != nil {
		return err
	}
	if len(p.Replacement) == 0 {
		return ErrEmptyReplacement
	}
	return nil
}

// locate returns the match offset of the patch signature in data.
func (p Patch) locate(data []byte) (int, error) {
	opts := sig.Options{Mask: p.Mask, Start: p.Start, MaxScan: p.MaxScan}
	if p.Strict {
		return sig.FindUnique(data, p.Signature, opts)
	}
	return sig.Find(data, p.Signature, opts)
}

// Options controls Apply and Restore.
type Options struct {
	// BackupSuffix defaults to DefaultBackupSuffix.
	BackupSuffix string

	// Atomic writes the patched image to a temp file and renames it over the
	// target instead of overwriting the target in place.
	Atomic bool

	// Sync flushes written data to stable storage.
	Sync bool

	// NoVerify skips re-reading the backup to compare digests.
	NoVerify bool

	// DryRun computes the patch against the pristine image (the backup when
	// one exists) and reports it without writing anything.
	DryRun bool

	// Logger defaults to the process logger.
	Logger *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logger.L
}

// Result reports what Apply did.
type Result struct {
	Path         string
	Patch        string
	BackupPath   string
	Restored     bool          // A previous backup was moved back first
	BackupDigest digest.Digest // Digest of the pristine image
	MatchOffset  int
	WriteOffset  int
	Original     []byte // Bytes that were overwritten
	Replaced     []byte // Bytes written in their place
	Size         int    // File length, unchanged by the patch
	DryRun       bool
}

// String renders the result in a short human-readable form.
func (r *Result) String() string {
	var sb strings.Builder
	status := "APPLIED"
	if r.DryRun {
		status = "DRY RUN"
	}
	name := r.Patch
	if name == "" {
		name = r.Path
	}
	sb.WriteString(fmt.Sprintf("[%s] %s\n", status, name))
	sb.WriteString(fmt.Sprintf("  File:     %s (%d bytes)\n", r.Path, r.Size))
	if r.BackupPath != "" {
		sb.WriteString(fmt.Sprintf("  Backup:   %s\n", r.BackupPath))
	}
	if r.BackupDigest != "" {
		sb.WriteString(fmt.Sprintf("  Digest:   %s\n", r.BackupDigest))
	}
	sb.WriteString(fmt.Sprintf("  Match:    0x%08X\n", r.MatchOffset))
	sb.WriteString(fmt.Sprintf("  Offset:   0x%08X\n", r.WriteOffset))
	sb.WriteString(fmt.Sprintf("  Length:   %d bytes\n", len(r.Replaced)))

	// Limit to first 32 bytes for readability
	show := len(r.Original)
	if show > 32 {
		show = 32
	}
	more := ""
	if len(r.Original) > 32 {
		more = " ..."
	}
	sb.WriteString(fmt.Sprintf("  Before:   % X%s\n", r.Original[:show], more))
	sb.WriteString(fmt.Sprintf("  After:    % X%s\n", r.Replaced[:show], more))
	return sb.String()
}

// Apply restores path from its backup if one exists, takes a fresh backup,
// then overwrites the span at match+Delta with p.Replacement.
//
// Nothing is written to path unless the signature is found and the span
// fits inside the file.
func Apply(path string, p Patch, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	log := opts.logger().With("file", path)
	fail := func(op string, err error) (*Result, error) {
		log.Error("patch failed", "op", op, "err", err)
		return nil, &Error{Path: path, Patch: p.Name, Op: op, Err: err}
	}

	// Mask and definition errors come before any I/O.
	if err := p.Validate(); err != nil {
		return fail("validate", err)
	}

	res := &Result{
		Path:       path,
		Patch:      p.Name,
		BackupPath: BackupPath(path, opts.BackupSuffix),
		DryRun:     opts.DryRun,
	}

	if opts.DryRun {
		return applyDryRun(res, p, fail)
	}

	restored, err := restoreBackup(path, res.BackupPath)
	if err != nil {
		return fail("restore", err)
	}
	res.Restored = restored
	if restored {
		log.Debug("restored original from backup", "backup", res.BackupPath)
	}

	res.BackupDigest, err = takeBackup(path, res.BackupPath, !opts.NoVerify)
	if err != nil {
		return fail("backup", err)
	}
	log.Debug("backup taken", "backup", res.BackupPath, "digest", res.BackupDigest)

	if opts.Atomic {
		data, err := os.ReadFile(path)
		if err != nil {
			return fail("read", err)
		}
		if op, err := rewrite(res, p, data); err != nil {
			return fail(op, err)
		}
		w := &writer.FileWriter{Path: path, Sync: opts.Sync}
		if err := w.WriteImage(data); err != nil {
			return fail("write", err)
		}
	} else {
		if op, err := applyInPlace(res, p, path, opts.Sync); err != nil {
			return fail(op, err)
		}
	}

	log.Info("patch applied",
		"patch", p.Name,
		"match", res.MatchOffset,
		"offset", res.WriteOffset,
		"len", len(res.Replaced))
	return res, nil
}

// applyInPlace opens path once for read-then-write and overwrites it from
// offset 0. The handle is released on every path.
func applyInPlace(res *Result, p Patch, path string, sync bool) (op string, err error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return "read", err
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			op, err = "write", closeErr
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return "read", err
	}
	if op, err := rewrite(res, p, data); err != nil {
		return op, err
	}
	w := &writer.InPlaceWriter{File: f, Sync: sync}
	if err := w.WriteImage(data); err != nil {
		return "write", err
	}
	return "", nil
}

func applyDryRun(res *Result, p Patch, fail func(string, error) (*Result, error)) (*Result, error) {
	src := res.Path
	if fileExists(res.BackupPath) {
		src = res.BackupPath
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fail("read", err)
	}
	res.BackupDigest = digest.FromBytes(data)
	if op, err := rewrite(res, p, data); err != nil {
		return fail(op, err)
	}
	return res, nil
}

// rewrite scans data and overwrites the target span in memory, recording
// offsets and the bytes before and after in res.
func rewrite(res *Result, p Patch, data []byte) (string, error) {
	res.Size = len(data)

	match, err := p.locate(data)
	if err != nil {
		return "scan", err
	}
	res.MatchOffset = match

	pos, ok := buf.AddOverflowSafe(match, p.Delta)
	if !ok {
		return "bounds", fmt.Errorf("%w: match 0x%X + delta %d overflows", ErrSpanOutOfRange, match, p.Delta)
	}
	end, err := buf.CheckSpan(len(data), pos, len(p.Replacement))
	if err != nil {
		return "bounds", fmt.Errorf("%w: %v", ErrSpanOutOfRange, err)
	}
	res.WriteOffset = pos

	span, _ := buf.Slice(data, pos, end-pos)
	res.Original = append([]byte(nil), span...)
	res.Replaced = append([]byte(nil), p.Replacement...)
	copy(span, p.Replacement)
	return "", nil
}
