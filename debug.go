package inkboard

import (
	"log/slog"
	"os"
)

// debugStats holds per-frame counters. Only logged when Config.Debug is set.
type debugStats struct {
	visible        int
	coalescedMoves int
	frames         uint64
}

// newLogger returns the default board logger: text records on stderr tagged
// with component=inkboard, filtered by level.
func newLogger(level *slog.LevelVar) *slog.Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("component", "inkboard")
}

// logFrameStats writes the frame's counters at debug level and resets them.
func (b *Board) logFrameStats() {
	s := &b.stats
	s.frames++
	b.Logger.Debug("frame",
		"frame", s.frames,
		"state", b.in.state.String(),
		"scale", b.camera.Viewport().Scale,
		"lod", b.LOD().String(),
		"visible", s.visible,
		"coalesced", s.coalescedMoves,
		"listeners", b.window.count(),
		"selected", b.selection.Count(),
	)
	if n := b.window.count(); n > 0 && b.in.cap == nil {
		b.Logger.Warn("window listeners attached without a session", "count", n)
	}
	s.visible = 0
	s.coalescedMoves = 0
}
