// Package mount serves the folder region of a session as a FUSE filesystem.
// Folders are directories; mkdir adds a folder and rmdir trashes one.
package mount

import (
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/brettbedarf/foldertree/config"
	"github.com/brettbedarf/foldertree/internal/util"
	"github.com/brettbedarf/foldertree/session"
	"github.com/brettbedarf/foldertree/tree"
)

// cacheTimeout is short as the tree also changes through the repl and api
const cacheTimeout = time.Second

// Server wraps the underlying fuse.Server.
type Server struct {
	sess   *session.Session
	opts   config.MountOptions
	trace  bool
	server *fuse.Server
}

func New(sess *session.Session) *Server {
	cfg := sess.Config()
	return &Server{
		sess:  sess,
		opts:  cfg.MountOptions,
		trace: cfg.LogLvl == util.TraceLevel,
	}
}

// Serve mounts the tree at mountPoint and returns once the mount is ready
func (s *Server) Serve(mountPoint string) error {
	logger := util.GetLogger("Mount")

	root := &dirNode{sess: s.sess, id: tree.RootID, mounted: time.Now()}
	timeout := cacheTimeout
	srv, err := fs.Mount(mountPoint, root, &fs.Options{
		MountOptions: fuse.MountOptions{
			Name:   s.opts.Name,
			FsName: s.opts.FsName,
			Debug:  s.opts.Debug || s.trace,
			Logger: util.NewLogLogger("FuseServer", util.TraceLevel),
		},
		EntryTimeout:    &timeout,
		AttrTimeout:     &timeout,
		NegativeTimeout: &timeout,
		Logger:          util.NewLogLogger("Fuse", util.DebugLevel),
	})
	if err != nil {
		return err
	}
	s.server = srv
	logger.Info().Str("mountpoint", mountPoint).Msg("Folder tree mounted")
	return nil
}

// Unmount cleanly unmounts the filesystem.
func (s *Server) Unmount() error {
	if s.server == nil {
		return nil
	}
	return s.server.Unmount()
}
