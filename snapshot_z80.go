package main

// parseZ80 decodes a .Z80 snapshot in v1, v2, or v3 layout. PC == 0 in
// the 30-byte v1 header signals an extended header (v2/v3) whose
// length at offset 30..31 locates the real PC and the start of the
// page-block RAM encoding.
func parseZ80(data []byte) (*SnapshotRecord, error) {
	if len(data) < 30 {
		return nil, NewLoadError(TruncatedHeader, "Z80 header shorter than 30 bytes")
	}

	rec := &SnapshotRecord{AllowInterrupts: true}

	a := data[0]
	f := data[1]
	rec.AF = uint16(a)<<8 | uint16(f)
	rec.BC = le16(data[2:4])
	rec.HL = le16(data[4:6])
	pcV1 := le16(data[6:8])
	rec.SP = le16(data[8:10])
	rec.I = data[10]
	rec.R = data[11]
	flags := data[12]
	if flags == 0xFF {
		flags = 1
	}
	rec.Border = flags & 0x07
	compressed := flags&0x20 != 0
	rec.DE = le16(data[13:15])
	rec.BC2 = le16(data[15:17])
	rec.DE2 = le16(data[17:19])
	rec.HL2 = le16(data[19:21])
	a2 := data[21]
	f2 := data[22]
	rec.AF2 = uint16(a2)<<8 | uint16(f2)
	rec.IY = le16(data[23:25])
	rec.IX = le16(data[25:27])
	rec.IFF1 = data[27] != 0
	rec.IFF2 = data[28] != 0
	rec.IM = data[29] & 0x03

	if pcV1 != 0 {
		rec.PC = pcV1
		ram := data[30:]
		if compressed {
			rec.RAMWrites = []MemWrite{{Addr: 0x4000, Data: rleDecode(ram, 0xC000)}}
		} else {
			if len(ram) < 0xC000 {
				return nil, NewLoadError(TruncatedBlock, "uncompressed v1 RAM image shorter than 48K")
			}
			rec.RAMWrites = []MemWrite{{Addr: 0x4000, Data: ram[:0xC000]}}
		}
		return rec, nil
	}

	if len(data) < 32 {
		return nil, NewLoadError(TruncatedHeader, "Z80 v2/v3 extended header missing length field")
	}
	extLen := int(le16(data[30:32]))
	if len(data) < 32+extLen {
		return nil, NewLoadError(TruncatedHeader, "Z80 extended header shorter than its declared length")
	}
	if extLen < 4 {
		return nil, NewLoadError(TruncatedHeader, "Z80 extended header too short to carry PC")
	}
	rec.PC = le16(data[32:34])

	offset := 30 + 2 + extLen
	for offset+3 <= len(data) {
		rawLen := int(le16(data[offset : offset+2]))
		page := data[offset+2]
		offset += 3

		uncompressed := rawLen == 0xFFFF
		storedLen := rawLen
		if uncompressed {
			storedLen = 0x4000
		}
		if offset+storedLen > len(data) {
			return nil, NewLoadError(TruncatedBlock, "Z80 page block shorter than its declared length")
		}
		block := data[offset : offset+storedLen]
		offset += storedLen

		var addr uint16
		switch page {
		case 4:
			addr = 0x8000
		case 5:
			addr = 0xC000
		case 8:
			addr = 0x4000
		default:
			continue
		}

		if uncompressed {
			rec.RAMWrites = append(rec.RAMWrites, MemWrite{Addr: addr, Data: block})
		} else {
			rec.RAMWrites = append(rec.RAMWrites, MemWrite{Addr: addr, Data: rleDecode(block, 0x4000)})
		}
	}

	return rec, nil
}
