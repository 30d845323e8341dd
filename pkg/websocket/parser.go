package websocket

import "unicode/utf8"

// defaultMaxFrameSize is used when Config.MaxFrameSize is zero.
const defaultMaxFrameSize = 1 << 20 // 1 MiB

// parsedFrame is what the parser emits once an entire frame's header and
// payload have been accounted for.
type parsedFrame struct {
	opcode opcode
	// payload is a zero-copy view of only the bytes the feed call that
	// completed this frame contributed — not the whole payload when a
	// frame's payload spans more than one feed call (see feed's doc
	// comment). payloadLen is the frame's true total payload length;
	// callers that need the whole payload materialized must slice it out
	// of their own contiguous accumulation buffer themselves.
	payload    []byte
	payloadLen int
	// logicalOpcode is opcode for a first/only fragment, or the opcode of
	// the message a continuation frame belongs to.
	logicalOpcode opcode
	isFinal       bool
}

// parser is an incremental RFC 6455 frame decoder that never copies payload
// bytes (it allocates only the parsedFrame it returns per frame). Callers
// drive it with feed, which may be called repeatedly as more bytes of the
// same logical stream arrive; the parser never requires the caller to
// re-present bytes it has already consumed. Based on the feed-loop shape of
// the original engine's ws_parser_feed/ws_parse_header.
type parser struct {
	maxFrameSize uint64

	hdrBytes [14]byte
	hdrNeed  int
	hdrHave  int

	fin        bool
	rsv        byte
	curOpcode  opcode
	masked     bool
	payloadLen uint64

	payloadRead uint64

	inFragmentedMessage bool
	firstFragmentOpcode opcode
}

// newParser returns a parser that rejects any frame whose declared payload
// exceeds maxFrameSize (0 selects defaultMaxFrameSize).
func newParser(maxFrameSize uint64) *parser {
	if maxFrameSize == 0 {
		maxFrameSize = defaultMaxFrameSize
	}
	return &parser{maxFrameSize: maxFrameSize, hdrNeed: 2}
}

// parseHeader attempts to finish decoding the header from hdrBytes[:hdrHave].
// It returns (true, nil) once the header is complete and validated, (false,
// nil) if more header bytes are needed (hdrNeed may have grown), or
// (false, err) on a validation failure.
func (p *parser) parseHeader() (bool, *Error) {
	if p.hdrHave < p.hdrNeed {
		return false, nil
	}
	b0, b1 := p.hdrBytes[0], p.hdrBytes[1]
	p.fin = b0&0x80 != 0
	p.rsv = (b0 >> 4) & 0x07
	p.curOpcode = opcode(b0 & 0x0f)
	p.masked = b1&0x80 != 0
	plen7 := uint64(b1 & 0x7f)

	if p.rsv != 0 {
		return false, newErr(ErrProtocol, "nonzero reserved bits")
	}
	if !p.curOpcode.isValid() {
		return false, newErr(ErrProtocol, "reserved or unknown opcode")
	}
	if p.masked {
		return false, newErr(ErrProtocol, "server must not mask frames sent to a client")
	}

	need := 2
	switch {
	case plen7 <= maxControlPayload:
		p.payloadLen = plen7
	case plen7 == payloadLen16Threshold:
		need += 2
		if p.hdrHave < need {
			p.hdrNeed = need
			return false, nil
		}
		p.payloadLen = uint64(p.hdrBytes[2])<<8 | uint64(p.hdrBytes[3])
	default: // 127
		need += 8
		if p.hdrHave < need {
			p.hdrNeed = need
			return false, nil
		}
		var v uint64
		for i := 0; i < 8; i++ {
			v = v<<8 | uint64(p.hdrBytes[2+i])
		}
		if p.hdrBytes[2]&0x80 != 0 {
			return false, newErr(ErrProtocol, "64-bit payload length has high bit set")
		}
		p.payloadLen = v
	}

	if p.curOpcode.isControl() {
		if !p.fin {
			return false, newErr(ErrProtocol, "control frame must not be fragmented")
		}
		if p.payloadLen > maxControlPayload {
			return false, newErr(ErrProtocol, "control frame payload exceeds 125 bytes")
		}
	}
	if p.payloadLen > p.maxFrameSize {
		return false, newErr(ErrBufferFull, "frame payload exceeds configured maximum")
	}
	return true, nil
}

// feed consumes bytes from data, advancing the parser's internal state.
// consumed is always <= len(data). partial is a zero-copy view of whatever
// payload bytes this call contributed (nil while still in the header);
// frame is non-nil once the entire payload has arrived, at which point the
// parser has reset itself for the next frame. The parser does not coalesce
// payload bytes across feed calls: frame.payload is only this call's
// contribution, and frame.payloadLen is the true total. A caller that needs
// the whole payload materialized (to run UTF-8/close-code validation, or to
// hand a complete message to its own caller) must reassemble it from its own
// contiguous accumulation buffer, using payloadLen to know how far back to
// slice — Conn does this via its ring buffer, which guarantees the bytes of
// one in-flight frame stay contiguous.
func (p *parser) feed(data []byte) (consumed int, partial []byte, frame *parsedFrame, err *Error) {
	for {
		for p.hdrHave < p.hdrNeed && consumed < len(data) {
			p.hdrBytes[p.hdrHave] = data[consumed]
			p.hdrHave++
			consumed++
		}
		complete, herr := p.parseHeader()
		if herr != nil {
			return consumed, nil, nil, herr
		}
		if !complete {
			if consumed == len(data) {
				return consumed, nil, nil, nil
			}
			continue
		}
		break
	}

	need := p.payloadLen - p.payloadRead
	avail := uint64(len(data) - consumed)
	take := need
	if avail < take {
		take = avail
	}
	payloadStart := data[consumed : consumed+int(take)]
	consumed += int(take)
	p.payloadRead += take
	partial = payloadStart

	if p.payloadRead < p.payloadLen {
		return consumed, partial, nil, nil
	}

	if !p.curOpcode.isControl() {
		if p.curOpcode == opContinuation {
			if !p.inFragmentedMessage {
				return consumed, partial, nil, newErr(ErrProtocol, "continuation frame without a preceding fragment")
			}
			if p.fin {
				p.inFragmentedMessage = false
			}
		} else {
			if p.inFragmentedMessage {
				return consumed, partial, nil, newErr(ErrProtocol, "new data frame while a fragmented message is in progress")
			}
			if !p.fin {
				p.inFragmentedMessage = true
				p.firstFragmentOpcode = p.curOpcode
			}
		}
	}

	logical := p.curOpcode
	if logical == opContinuation {
		logical = p.firstFragmentOpcode
	}
	f := parsedFrame{
		opcode:        p.curOpcode,
		payload:       partial,
		payloadLen:    int(p.payloadLen),
		logicalOpcode: logical,
		isFinal:       p.fin,
	}

	p.hdrNeed = 2
	p.hdrHave = 0
	p.payloadRead = 0

	return consumed, partial, &f, nil
}

// validateFramePayload runs the checks that require the complete, contiguous
// payload of a frame — RFC 3629 UTF-8 validity for text messages and close
// reasons, and RFC 6455 section 7.4 close-code validity — which the
// incremental parser cannot perform itself when a payload spans more than
// one feed call. payload must be the frame's full payload, not a partial
// chunk.
func validateFramePayload(op opcode, logicalOp opcode, payload []byte) *Error {
	isText := op == opText || (op == opContinuation && logicalOp == opText)
	if isText && len(payload) > 0 && !utf8.Valid(payload) {
		return newErr(ErrProtocol, "invalid UTF-8 in text payload")
	}
	if op == opClose {
		if len(payload) == 1 {
			return newErr(ErrProtocol, "close frame payload of length 1")
		}
		if len(payload) >= 2 {
			code := uint16(payload[0])<<8 | uint16(payload[1])
			if !isValidCloseCode(code) {
				return newErr(ErrProtocol, "invalid close code")
			}
			reason := payload[2:]
			if len(reason) > 0 && !utf8.Valid(reason) {
				return newErr(ErrProtocol, "invalid UTF-8 in close reason")
			}
		}
	}
	return nil
}
