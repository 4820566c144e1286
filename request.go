package foldertree

// CommandType valid types are the mutating and lookup operations of a folder tree
type CommandType string

const (
	AddCommand     CommandType = "add"
	DeleteCommand  CommandType = "delete"
	MoveCommand    CommandType = "move"
	TrashCommand   CommandType = "trash"
	RestoreCommand CommandType = "restore"
	PurgeCommand   CommandType = "purge"
	EmptyCommand   CommandType = "empty"
)

// CommandRequest represents one operation against a folder tree. It is passed
// from entrypoints (scripts, repl, http) to the session which applies it.
type CommandRequest struct {
	ID   string // Correlates logs and events; generated when not supplied
	Type CommandType
	Path string // Target path (add, delete, trash) or source path (move)
	Dest string // Destination folder path for move
	Key  string // Trash key for restore and purge
}
