package startup

import (
	"errors"
	"fmt"
)

// Validate checks that the spans are well formed and that the load image, BSS
// and Data do not overlap one another.
func (img Image) Validate() (err error) {
	for name, span := range map[string]Span{"bss": img.BSS, "data": img.Data} {
		if span.End < span.Start {
			err = errors.Join(err, fmt.Errorf("%w: %s [0x%04X, 0x%04X)", ErrBadSpan, name, span.Start, span.End))
		}
	}
	if err != nil {
		return err
	}

	if img.BSS.Overlaps(img.Data) {
		err = errors.Join(err, fmt.Errorf("%w: bss [0x%04X, 0x%04X), data [0x%04X, 0x%04X)", ErrOverlap,
			img.BSS.Start, img.BSS.End, img.Data.Start, img.Data.End))
	}

	load := img.DataImage()
	if load.Overlaps(img.Data) || load.Overlaps(img.BSS) {
		err = errors.Join(err, fmt.Errorf("%w: load image [0x%04X, 0x%04X)", ErrLoadOverlap, load.Start, load.End))
	}

	end := img.staticEnd()
	if img.Heap != 0 && img.Heap < end {
		err = errors.Join(err, fmt.Errorf("%w: heap at 0x%04X, static storage ends at 0x%04X", ErrHeapStart, img.Heap, end))
	}

	if img.StackTop < end {
		err = errors.Join(err, fmt.Errorf("%w: stack top 0x%04X, static storage ends at 0x%04X", ErrStackTop, img.StackTop, end))
	}
	return err
}

func (img Image) staticEnd() uint32 {
	end := img.BSS.End
	if img.Data.End > end {
		end = img.Data.End
	}
	return end
}
