package fastc

import (
	"bytes"
	"fmt"
)

// Block statistics, grounded on original_source/Core/src/BlockStats.cpp's
// BlockStat/BlockStatManager/BlockStatList. The original gives each block a
// singly-linked, dedupe-by-name list of {name,int-or-float} stats behind a
// shared mutex; this package's equivalent (spec.md §5's "give each block
// its own record; merge after join" guidance) is a flat []BlockStat per
// block index with no shared mutable state, since each worker in this
// package's dispatchers owns disjoint block ranges and never contends with
// another worker's row of the table.

// BlockStat is one named measurement attached to a single block, holding
// either an integer or a float value (BlockStat::eType_Int/eType_Float).
type BlockStat struct {
	Name    string
	IsFloat bool
	IntVal  int64
	FloatVal float64
}

// IntStat builds an integer-valued BlockStat.
func IntStat(name string, v int64) BlockStat { return BlockStat{Name: name, IntVal: v} }

// FloatStat builds a float-valued BlockStat.
func FloatStat(name string, v float64) BlockStat {
	return BlockStat{Name: name, IsFloat: true, FloatVal: v}
}

func (s BlockStat) String() string {
	if s.IsFloat {
		return fmt.Sprintf("%s,%f", s.Name, s.FloatVal)
	}
	return fmt.Sprintf("%s,%d", s.Name, s.IntVal)
}

// BlockStatList holds one row of named stats per block index, sized up
// front to the job's block count (BlockStatManager's fixed-size array of
// BlockStatList heads). AddStat mirrors BlockStatList::AddStat's
// dedupe-by-name replace-or-append behavior, but as a slice instead of a
// linked list.
type BlockStatList struct {
	rows [][]BlockStat
}

// NewBlockStatList allocates a stat table with one row per block.
func NewBlockStatList(numBlocks int) *BlockStatList {
	if numBlocks < 0 {
		numBlocks = 0
	}
	return &BlockStatList{rows: make([][]BlockStat, numBlocks)}
}

// AddStat appends stat to blockIdx's row, replacing any existing stat of
// the same name in that row (BlockStatList::AddStat's "same name -> the
// previous iteration's value is reusable wins").
func (l *BlockStatList) AddStat(blockIdx int, stat BlockStat) {
	if blockIdx < 0 || blockIdx >= len(l.rows) {
		return
	}
	row := l.rows[blockIdx]
	for i, s := range row {
		if s.Name == stat.Name {
			row[i] = stat
			return
		}
	}
	l.rows[blockIdx] = append(row, stat)
}

// Row returns blockIdx's stats in insertion order.
func (l *BlockStatList) Row(blockIdx int) []BlockStat {
	if blockIdx < 0 || blockIdx >= len(l.rows) {
		return nil
	}
	return l.rows[blockIdx]
}

// NumBlocks returns the table's row count.
func (l *BlockStatList) NumBlocks() int { return len(l.rows) }

// CSV renders the table as "block_idx,stat_name,value" lines, one per stat,
// matching BlockStatManager::ToFile's per-block-then-per-stat ordering.
func (l *BlockStatList) CSV() []byte {
	var buf bytes.Buffer
	for i, row := range l.rows {
		for _, s := range row {
			fmt.Fprintf(&buf, "%d,%s\n", i, s)
		}
	}
	return buf.Bytes()
}

// blockMode peeks a packed BPTC block's unary mode header without doing a
// full decode, grounded on DecodeBlock's own header read.
func blockMode(block []byte) int {
	r := NewBitReader(block)
	mode := 0
	for mode < 8 && r.ReadBit() == 0 {
		mode++
	}
	return mode
}

func blockSqError(a, b [16][4]uint8, metric ErrorMetric) float64 {
	var total float64
	for i := range a {
		for c := 0; c < 4; c++ {
			d := float64(a[i][c]) - float64(b[i][c])
			total += d * d * metric[c]
		}
	}
	return total
}

// EncodeJobWithStats runs enc.EncodeJob and additionally records each
// block's chosen mode and reconstruction error into sink, exposed as an
// optional *BlockStatList alongside the job per SPEC_FULL.md §4.13's
// {Plain(fn), WithStats(fn, sink)} guidance — modeled here as an ordinary
// nil-or-present pointer argument, Go's equivalent of that sum type (the
// teacher uses the same nil-or-present-pointer idiom for
// Config.ProgressCallback).
func (enc *Encoder) EncodeJobWithStats(j Job, settings CompressionSettings, sink *BlockStatList) error {
	if j.Format != FormatBPTC {
		return newError(ErrInvalidDimensions, "EncodeJobWithStats only supports BPTC")
	}
	blockSz := j.Format.BlockSizeBytes()
	for y := j.YStart; y < j.YEnd; y += 4 {
		for x := j.XStart; x < j.XEnd; x += 4 {
			idx := j.CoordsToBlockIdx(x, y)
			pixels := readBlockPixels(j.In, j.Width, j.Height, x, y)
			block, err := enc.EncodeBlock(pixels, settings)
			if err != nil {
				return wrap(err, "EncodeJobWithStats")
			}
			copy(j.Out[idx*blockSz:idx*blockSz+blockSz], block)

			if sink != nil {
				mode := blockMode(block)
				sink.AddStat(idx, IntStat("mode", int64(mode)))
				recon := DecodeBlock(block)
				sink.AddStat(idx, FloatStat("sq_error", blockSqError(pixels, recon, settings.ErrorMetric)))
			}
		}
	}
	return nil
}
