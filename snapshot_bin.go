package main

// parseBIN decodes a raw binary image. If the file opens with the
// ASCII signature "ZX" it carries a 10-byte header naming its own
// origin, entry PC, and payload size; otherwise the entire file is
// loaded as-is at 0x8000 with execution starting there. A raw binary
// carries no register state to recover IFF1/IFF2 from, so BIN loads
// conservatively disarm interrupts rather than guessing their state.
func parseBIN(data []byte) (*SnapshotRecord, error) {
	rec := &SnapshotRecord{AllowInterrupts: false}

	if len(data) >= 2 && data[0] == 'Z' && data[1] == 'X' {
		if len(data) < 10 {
			return nil, NewLoadError(TruncatedHeader, "ZX-tagged BIN header shorter than 10 bytes")
		}
		org := le16(data[2:4])
		pc := le16(data[4:6])
		size := le16(data[6:8])
		payload := data[10:]
		if int(size) > len(payload) {
			return nil, NewLoadError(TruncatedBlock, "ZX-tagged BIN payload shorter than declared size")
		}
		rec.RAMWrites = []MemWrite{{Addr: org, Data: payload[:size]}}
		rec.PC = pc
		rec.SP = 0xFFFF
		return rec, nil
	}

	rec.RAMWrites = []MemWrite{{Addr: 0x8000, Data: data}}
	rec.PC = 0x8000
	rec.SP = 0xFFFF
	return rec, nil
}
