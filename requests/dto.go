package requests

import "github.com/brettbedarf/foldertree"

// CommandDTO is the JSON/YAML representation of [foldertree.CommandRequest]
//
// Which of path, dest and key are required depends on the "type" value:
//
//	add, delete, trash: path
//	move:               path (source) and dest
//	restore, purge:     key
//	empty:              none
type CommandDTO struct {
	ID   *string                `json:"id,omitempty" yaml:"id,omitempty"` // Optional id to correlate logs and events (Default new uuid)
	Type foldertree.CommandType `json:"type" yaml:"type" validate:"required,oneof=add delete move trash restore purge empty"`
	Path string                 `json:"path,omitempty" yaml:"path,omitempty" validate:"required_if=Type add,required_if=Type delete,required_if=Type move,required_if=Type trash"`
	Dest string                 `json:"dest,omitempty" yaml:"dest,omitempty" validate:"required_if=Type move"`
	Key  string                 `json:"key,omitempty" yaml:"key,omitempty" validate:"required_if=Type restore,required_if=Type purge"`
}

// ScriptDTO is a command script document; either a bare list of commands or
// an object holding them under "commands"
type ScriptDTO struct {
	Commands []CommandDTO `json:"commands" yaml:"commands"`
}
