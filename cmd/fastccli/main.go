package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"strings"

	"github.com/GammaUNC/fastc-go/fastc"

	_ "image/jpeg"
	_ "image/png"
)

func main() {
	var (
		inPath  string
		outPath string
		format  string
		quality string
		workers int
		encode  bool
		decode  bool
		stats   string
	)
	flag.StringVar(&inPath, "in", "", "input file")
	flag.StringVar(&outPath, "out", "", "output file")
	flag.StringVar(&format, "format", "bptc", "block format: bptc|dxt1|dxt5|etc1|pvrtc4|pvrtc2")
	flag.StringVar(&quality, "quality", "medium", "BPTC encode quality preset: fast|medium|thorough")
	flag.IntVar(&workers, "workers", 1, "number of worker goroutines (1 = serial dispatch)")
	flag.BoolVar(&encode, "encode", false, "encode input image -> block format")
	flag.BoolVar(&decode, "decode", false, "decode input block format -> .png")
	flag.StringVar(&stats, "stats", "", "BPTC only: write per-block mode/error stats as CSV to this path")
	flag.Parse()

	if inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fastccli -in <input> -out <output> [-encode|-decode] [-format bptc] [-workers N]")
		os.Exit(2)
	}
	if encode == decode {
		fmt.Fprintln(os.Stderr, "specify exactly one of -encode or -decode")
		os.Exit(2)
	}
	if outPath == "" {
		fmt.Fprintln(os.Stderr, "missing -out")
		os.Exit(2)
	}

	fmtVal, err := parseFormat(format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	inData, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if encode {
		if err := runEncode(inData, outPath, fmtVal, quality, workers, stats); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := runDecode(inData, outPath, fmtVal, workers); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runEncode(inData []byte, outPath string, f fastc.Format, quality string, workers int, statsPath string) error {
	img, _, err := image.Decode(bytes.NewReader(inData))
	if err != nil {
		return err
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()

	job := fastc.NewJob(f, rgba.Pix, nil, w, h)
	job.Out = make([]byte, job.BlockCount()*f.BlockSizeBytes())
	if err := job.Validate(); err != nil {
		return err
	}

	settings := fastc.DefaultSettings()
	settings.NumSimulatedAnnealingSteps = parseQualitySteps(quality)

	var statList *fastc.BlockStatList
	if statsPath != "" {
		if f != fastc.FormatBPTC {
			return fmt.Errorf("fastccli: -stats is only supported for -format bptc")
		}
		statList = fastc.NewBlockStatList(job.BlockCount())
	}

	switch f {
	case fastc.FormatBPTC:
		enc := fastc.NewEncoder()
		if statList != nil {
			if err := enc.EncodeJobWithStats(job, settings, statList); err != nil {
				return err
			}
		} else if err := dispatch(job, workers, func(sub fastc.Job) error {
			return enc.EncodeJob(sub, settings)
		}); err != nil {
			return err
		}
	case fastc.FormatDXT1, fastc.FormatDXT5:
		if err := dispatch(job, workers, fastc.EncodeJobDXT); err != nil {
			return err
		}
	case fastc.FormatETC1:
		if err := dispatch(job, workers, fastc.EncodeJobETC1); err != nil {
			return err
		}
	case fastc.FormatPVRTC4BPP, fastc.FormatPVRTC2BPP:
		// PVRTC's labeling pass is whole-image; always serial (spec.md §4.9).
		if err := fastc.EncodeJobPVRTC(job); err != nil {
			return err
		}
	}

	if statList != nil {
		if err := os.WriteFile(statsPath, statList.CSV(), 0o644); err != nil {
			return err
		}
	}
	return os.WriteFile(outPath, job.Out, 0o644)
}

func runDecode(inData []byte, outPath string, f fastc.Format, workers int) error {
	// fastccli has no container format of its own, so a raw block stream
	// carries no width or height. For every format, decode assumes inData
	// is exactly one square grid of blocks and infers its side from the
	// length.
	bw, bh := f.BlockDimensions()
	blockSz := f.BlockSizeBytes()
	if blockSz == 0 || len(inData)%blockSz != 0 {
		return fmt.Errorf("fastccli: input length %d is not a multiple of block size %d", len(inData), blockSz)
	}
	numBlocks := len(inData) / blockSz
	side := 1
	for side*side < numBlocks {
		side++
	}
	if side*side != numBlocks {
		return fmt.Errorf("fastccli: decode requires a square block grid (got %d blocks); supply width/height out of band for non-square images", numBlocks)
	}
	w, h := side*bw, side*bh

	out := make([]byte, w*h*4)
	job := fastc.NewJob(f, inData, out, w, h)
	if err := job.Validate(); err != nil {
		return err
	}

	var err error
	switch f {
	case fastc.FormatBPTC:
		err = dispatch(job, workers, fastc.DecodeJob)
	case fastc.FormatDXT1, fastc.FormatDXT5:
		err = dispatch(job, workers, fastc.DecodeJobDXT)
	case fastc.FormatETC1:
		err = dispatch(job, workers, fastc.DecodeJobETC1)
	case fastc.FormatPVRTC4BPP, fastc.FormatPVRTC2BPP:
		err = fastc.DecodeJobPVRTC(job)
	}
	if err != nil {
		return err
	}

	rgba := &image.RGBA{Pix: out, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
	f2, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f2.Close()
	return png.Encode(f2, rgba)
}

// dispatch runs work over job using a ThreadGroup when workers > 1, falling
// back to DispatchSerial otherwise (spec.md §4.9's dispatcher strategies).
func dispatch(job fastc.Job, workers int, work fastc.BlockWorkFunc) error {
	if workers <= 1 {
		return fastc.DispatchSerial(job, work)
	}
	tg := fastc.NewThreadGroup(workers, work)
	defer tg.Close()
	return tg.Dispatch(job)
}

func parseFormat(s string) (fastc.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bptc", "bc7":
		return fastc.FormatBPTC, nil
	case "dxt1", "bc1":
		return fastc.FormatDXT1, nil
	case "dxt5", "bc3":
		return fastc.FormatDXT5, nil
	case "etc1":
		return fastc.FormatETC1, nil
	case "pvrtc4", "pvrtc4bpp":
		return fastc.FormatPVRTC4BPP, nil
	case "pvrtc2", "pvrtc2bpp":
		return fastc.FormatPVRTC2BPP, nil
	default:
		return 0, fmt.Errorf("invalid -format %q (want bptc|dxt1|dxt5|etc1|pvrtc4|pvrtc2)", s)
	}
}

func parseQualitySteps(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fast":
		return 10
	case "thorough":
		return 100
	default:
		return 50
	}
}
