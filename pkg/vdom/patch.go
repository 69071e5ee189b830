package vdom

// PatchOp is the type of patch operation.
type PatchOp uint8

const (
	PatchSetText         PatchOp = 0x01 // Update text content
	PatchSetAttr         PatchOp = 0x02 // Set/update attribute
	PatchRemoveAttr      PatchOp = 0x03 // Remove attribute
	PatchInsertNode      PatchOp = 0x04 // Insert new node
	PatchRemoveNode      PatchOp = 0x05 // Remove node
	PatchReplaceNode     PatchOp = 0x07 // Replace node entirely
	PatchReplaceChildren PatchOp = 0x0C // Replace all children of a node
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchInsertNode:
		return "InsertNode"
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchReplaceNode:
		return "ReplaceNode"
	case PatchReplaceChildren:
		return "ReplaceChildren"
	default:
		return "Unknown"
	}
}

// Patch represents a single DOM operation to apply.
//
// For ReplaceChildren, Node is the new parent element; only its children are
// sent to the client.
type Patch struct {
	Op       PatchOp // Operation type
	HID      string  // Target element's hydration ID
	Key      string  // Attribute key (for SetAttr/RemoveAttr)
	Value    string  // New value
	Node     *VNode  // For InsertNode/ReplaceNode/ReplaceChildren
	Index    int     // Insert position
	ParentID string  // Parent for InsertNode
}
