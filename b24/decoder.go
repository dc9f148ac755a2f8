package b24

import (
	"iter"
)

const (
	//C0
	codeNUL  = 0x00
	codeBEL  = 0x07
	codeAPB  = 0x08
	codeAPF  = 0x09
	codeAPD  = 0x0A
	codeAPU  = 0x0B
	codeCS   = 0x0C
	codeAPR  = 0x0D
	codeLS1  = 0x0E
	codeLS0  = 0x0F
	codePAPF = 0x16
	codeCAN  = 0x18
	codeSS2  = 0x19
	codeESC  = 0x1B
	codeAPS  = 0x1C
	codeSS3  = 0x1D
	codeRS   = 0x1E
	codeUS   = 0x1F
	codeSP   = 0x20
	codeDEL  = 0x7F

	//C1
	codeBKF   = 0x80
	codeWHF   = 0x87
	codeSSZ   = 0x88
	codeMSZ   = 0x89
	codeNSZ   = 0x8A
	codeSZX   = 0x8B
	codeCOL   = 0x90
	codeFLC   = 0x91
	codeCDC   = 0x92
	codePOL   = 0x93
	codeWMM   = 0x94
	codeMACRO = 0x95
	codeHLC   = 0x97
	codeRPC   = 0x98
	codeSPL   = 0x99
	codeSTL   = 0x9A
	codeCSI   = 0x9B
	codeTIME  = 0x9D

	//Escape sequence bytes
	escLS2      = 0x6E
	escLS3      = 0x6F
	escLS1R     = 0x7E
	escLS2R     = 0x7D
	escLS3R     = 0x7C
	escDoubleG  = 0x24
	escDrcs     = 0x20
	escSingleG0 = 0x28
	escSingleG3 = 0x2B

	macroEnd = 0x4F
)

type decoder struct {
	graphicSets [4]codeSet
	gl          int
	gr          int
	pending     *Character
	singleShift int
	stopped     bool
	style       Style
	yield       func(Event) bool
}

func newDecoder(yield func(Event) bool) *decoder {
	return &decoder{
		graphicSets: [4]codeSet{codeSetKanji, codeSetAlphanumeric, codeSetHiragana, codeSetMacro},
		gl:          0,
		gr:          2,
		singleShift: -1,
		style:       StyleNormal,
		yield:       yield,
	}
}

// Decode interprets one statement body. Graphic set designations start from
// the default state for every body. Consecutive glyphs of the same class are
// merged into one Character event. Unrecognized bytes are skipped.
func Decode(body []byte) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		d := newDecoder(yield)
		if d.run(body) {
			d.flush()
		}
	}
}

func (d *decoder) send(event Event) bool {
	if d.stopped {
		return false
	}

	if !d.yield(event) {
		d.stopped = true
	}

	return !d.stopped
}

func (d *decoder) flush() bool {
	if d.pending == nil {
		return !d.stopped
	}

	character := *d.pending
	d.pending = nil

	return d.send(character)
}

func (d *decoder) emit(event Event) {
	if d.flush() {
		d.send(event)
	}
}

func (d *decoder) appendGlyph(class GlyphClass, drcs uint8, text string) {
	if d.pending != nil && d.pending.Class == class && d.pending.Drcs == drcs {
		d.pending.Text += text

		return
	}

	if d.flush() {
		d.pending = &Character{Class: class, Drcs: drcs, Text: text}
	}
}

func (d *decoder) run(buffer []byte) bool {
	position := 0

	for position < len(buffer) && !d.stopped {
		b := buffer[position]

		switch {
		case b < codeSP:
			position = d.control0(buffer, position)
		case b == codeSP:
			d.emit(Space{})
			position++
		case b == codeDEL, b == 0xA0, b == 0xFF:
			position++
		case b < codeDEL:
			slot := d.gl
			if d.singleShift >= 0 {
				slot = d.singleShift
				d.singleShift = -1
			}

			position = d.graphic(buffer, position, slot)
		case b < 0xA0:
			position = d.control1(buffer, position)
		default:
			position = d.graphic(buffer, position, d.gr)
		}
	}

	return !d.stopped
}

func isGraphicCode(b byte) bool {
	code := b & 0x7F

	return code > codeSP && code < codeDEL
}

func (d *decoder) graphic(buffer []byte, position int, slot int) int {
	set := d.graphicSets[slot]
	size := set.size()

	if position+size > len(buffer) {
		return len(buffer)
	}

	first := buffer[position] & 0x7F
	var second byte
	if size == 2 {
		if !isGraphicCode(buffer[position+1]) {
			return position + 1
		}

		second = buffer[position+1] & 0x7F
	}

	if set == codeSetMacro {
		if first >= 0x60 && first <= 0x6F {
			d.run(defaultMacros[first-0x60])
		}

		return position + size
	}

	text, class, ok := set.glyph(first, second, d.style)
	if !ok {
		return position + size
	}

	var drcs uint8
	if class == GlyphClassDrcs {
		drcs = uint8(set - codeSetDrcs0)
	}

	d.appendGlyph(class, drcs, text)

	return position + size
}

//Returns the position after count parameter bytes, or the end of the buffer
//when the parameters are cut short.
func skipParameters(buffer []byte, position int, count int) int {
	return min(position+1+count, len(buffer))
}

func (d *decoder) control0(buffer []byte, position int) int {
	switch buffer[position] {
	case codeCS:
		d.emit(ClearScreen{})
	case codeLS1:
		d.gl = 1
	case codeLS0:
		d.gl = 0
	case codeSS2:
		d.singleShift = 2
	case codeSS3:
		d.singleShift = 3
	case codePAPF:
		return skipParameters(buffer, position, 1)
	case codeAPS:
		if position+2 >= len(buffer) {
			return len(buffer)
		}

		d.emit(PositionSet{
			Col: int(buffer[position+2] & 0x3F),
			Row: int(buffer[position+1] & 0x3F),
		})

		return position + 3
	case codeESC:
		return d.escape(buffer, position)
	case codeNUL, codeBEL, codeAPB, codeAPF, codeAPD, codeAPU, codeAPR, codeCAN, codeRS, codeUS:
	}

	return position + 1
}

//Designations and locking shifts. Returns the position after the sequence.
func (d *decoder) escape(buffer []byte, position int) int {
	next := func(offset int) (byte, bool) {
		if position+offset >= len(buffer) {
			return 0, false
		}

		return buffer[position+offset], true
	}

	first, ok := next(1)
	if !ok {
		return len(buffer)
	}

	switch {
	case first == escLS2:
		d.gl = 2
	case first == escLS3:
		d.gl = 3
	case first == escLS1R:
		d.gr = 1
	case first == escLS2R:
		d.gr = 2
	case first == escLS3R:
		d.gr = 3
	case first >= escSingleG0 && first <= escSingleG3:
		slot := int(first - escSingleG0)

		final, ok := next(2)
		if !ok {
			return len(buffer)
		}

		if final != escDrcs {
			d.graphicSets[slot] = singleByteCodeSet(final)

			return position + 3
		}

		final, ok = next(3)
		if !ok {
			return len(buffer)
		}

		d.graphicSets[slot] = drcsCodeSet(final)

		return position + 4
	case first == escDoubleG:
		second, ok := next(2)
		if !ok {
			return len(buffer)
		}

		if second < escSingleG0 || second > escSingleG3 {
			d.graphicSets[0] = doubleByteCodeSet(second)

			return position + 3
		}

		slot := int(second - escSingleG0)

		final, ok := next(3)
		if !ok {
			return len(buffer)
		}

		if final != escDrcs {
			d.graphicSets[slot] = doubleByteCodeSet(final)

			return position + 4
		}

		final, ok = next(4)
		if !ok {
			return len(buffer)
		}

		//Only DRCS-0 is a two byte set
		d.graphicSets[slot] = codeSetUnknownDoubleByte
		if final == 0x40 {
			d.graphicSets[slot] = codeSetDrcs0
		}

		return position + 5
	}

	return position + 2
}

func (d *decoder) control1(buffer []byte, position int) int {
	code := buffer[position]

	switch {
	case code >= codeBKF && code <= codeWHF:
		d.emit(ColorChange{Color: Color(code - codeBKF)})
	case code == codeSSZ:
		d.style = StyleSmall
		d.emit(StyleChange{Style: StyleSmall})
	case code == codeMSZ:
		d.style = StyleMedium
		d.emit(StyleChange{Style: StyleMedium})
	case code == codeNSZ:
		d.style = StyleNormal
		d.emit(StyleChange{Style: StyleNormal})
	case code == codeSZX, code == codeFLC, code == codePOL, code == codeWMM, code == codeHLC, code == codeRPC:
		return skipParameters(buffer, position, 1)
	case code == codeCOL, code == codeCDC:
		if position+1 < len(buffer) && buffer[position+1] == codeSP {
			return skipParameters(buffer, position, 2)
		}

		return skipParameters(buffer, position, 1)
	case code == codeMACRO:
		for end := position + 1; end+1 < len(buffer); end++ {
			if buffer[end] == codeMACRO && buffer[end+1] == macroEnd {
				return end + 2
			}
		}

		return len(buffer)
	case code == codeCSI:
		return d.controlSequence(buffer, position)
	case code == codeTIME:
		return skipTime(buffer, position)
	case code == codeSPL, code == codeSTL:
	}

	return position + 1
}

func (d *decoder) controlSequence(buffer []byte, position int) int {
	for end := position + 1; end < len(buffer); end++ {
		if buffer[end] >= 0x40 && buffer[end] <= 0x7E {
			d.emit(ControlSequence{Final: buffer[end], Raw: string(buffer[position+1 : end+1])})

			return end + 1
		}
	}

	return len(buffer)
}

func skipTime(buffer []byte, position int) int {
	if position+1 >= len(buffer) {
		return len(buffer)
	}

	switch buffer[position+1] {
	case 0x20, 0x28:
		return skipParameters(buffer, position, 2)
	case 0x29:
		for end := position + 2; end < len(buffer); end++ {
			if buffer[end] >= 0x40 && buffer[end] <= 0x43 {
				return end + 1
			}
		}

		return len(buffer)
	}

	return position + 2
}
