package protocol

// PatchOp is the wire opcode of a DOM patch. Values match vdom.PatchOp.
type PatchOp uint8

const (
	PatchSetText         PatchOp = 0x01
	PatchSetAttr         PatchOp = 0x02
	PatchRemoveAttr      PatchOp = 0x03
	PatchInsertNode      PatchOp = 0x04
	PatchRemoveNode      PatchOp = 0x05
	PatchReplaceNode     PatchOp = 0x07
	PatchReplaceChildren PatchOp = 0x0C
)

// Patch is a DOM operation as sent to the client.
//
// Field usage per op:
//
//	SetText          HID, Value
//	SetAttr          HID, Key, Value
//	RemoveAttr       HID, Key
//	InsertNode       HID (parent), Index, HTML
//	RemoveNode       HID
//	ReplaceNode      HID, HTML
//	ReplaceChildren  HID, HTML
type Patch struct {
	Op    PatchOp
	HID   string
	Key   string
	Value string
	Index int
	HTML  string
}

// PatchesFrame is an ordered batch of patches produced by one render.
type PatchesFrame struct {
	Seq     uint64
	Patches []Patch
}

// EncodePatches encodes a batch of patches into a complete frame.
func EncodePatches(pf *PatchesFrame) ([]byte, error) {
	e := NewEncoder()
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Patches)))
	for _, p := range pf.Patches {
		e.WriteByte(byte(p.Op))
		e.WriteString(p.HID)
		switch p.Op {
		case PatchSetText:
			e.WriteString(p.Value)
		case PatchSetAttr:
			e.WriteString(p.Key)
			e.WriteString(p.Value)
		case PatchRemoveAttr:
			e.WriteString(p.Key)
		case PatchInsertNode:
			e.WriteUvarint(uint64(p.Index))
			e.WriteString(p.HTML)
		case PatchReplaceNode, PatchReplaceChildren:
			e.WriteString(p.HTML)
		}
	}
	f := NewFrame(FramePatches, e.Bytes())
	f.Flags = FlagSequenced
	return f.Encode()
}

// DecodePatches decodes a batch of patches from a patches frame payload.
func DecodePatches(payload []byte) (*PatchesFrame, error) {
	d := NewDecoder(payload)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}

	pf := &PatchesFrame{Seq: seq, Patches: make([]Patch, 0, count)}
	for i := 0; i < count; i++ {
		p, err := decodePatch(d)
		if err != nil {
			return nil, err
		}
		pf.Patches = append(pf.Patches, p)
	}
	return pf, nil
}

func decodePatch(d *Decoder) (Patch, error) {
	var p Patch
	op, err := d.ReadByte()
	if err != nil {
		return p, err
	}
	p.Op = PatchOp(op)
	if p.HID, err = d.ReadString(); err != nil {
		return p, err
	}

	switch p.Op {
	case PatchSetText:
		p.Value, err = d.ReadString()
	case PatchSetAttr:
		if p.Key, err = d.ReadString(); err == nil {
			p.Value, err = d.ReadString()
		}
	case PatchRemoveAttr:
		p.Key, err = d.ReadString()
	case PatchInsertNode:
		var idx uint64
		if idx, err = d.ReadUvarint(); err == nil {
			p.Index = int(idx)
			p.HTML, err = d.ReadString()
		}
	case PatchReplaceNode, PatchReplaceChildren:
		p.HTML, err = d.ReadString()
	case PatchRemoveNode:
	default:
		err = ErrUnknownPatchOp
	}
	return p, err
}
