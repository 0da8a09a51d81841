package fs

import (
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"xide/service/fs"
	ws "xide/websocket"
)

const (
	actionRead         = "read"
	actionWrite        = "write"
	actionCreateFile   = "create_file"
	actionCreateFolder = "create_folder"
	actionDelete       = "delete"
	actionRename       = "rename"
	actionMove         = "move"
	actionList         = "list"
	actionExists       = "exists"
)

type requestData struct {
	Path       string  `json:"path"`
	Content    *string `json:"content,omitempty"`
	NewPath    string  `json:"newPath,omitempty"`
	TargetPath string  `json:"targetPath,omitempty"`
}

type contentData struct {
	Content string `json:"content"`
}
type listData struct {
	Items []fs.DirectoryEntry `json:"items"`
}
type moveData struct {
	DestinationPath string `json:"destinationPath"`
}
type existsData struct {
	Exists    bool `json:"exists"`
	Directory bool `json:"directory"`
}

var errContentRequired = errors.New("content required")

// FSService exposes file operations over a websocket connection. Replies
// carry the id and action of the request they answer.
type FSService struct {
	conn *ws.Conn
	fs   *fs.Service

	logger *zap.Logger
	wg     sync.WaitGroup
}

func NewService(files *fs.Service, logger *zap.Logger) ws.Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FSService{fs: files, logger: logger.Named("fs")}
}

func (s *FSService) Name() string {
	return "fs"
}

func (s *FSService) Register(conn *ws.Conn) {
	s.conn = conn
}

func (s *FSService) HandleTextMessage(id string, action string, data json.RawMessage) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.conn.WriteJSON(s.handle(id, action, data))
	}()
}

// Cleanup waits for in-flight operations to finish writing.
func (s *FSService) Cleanup(err error) {
	s.wg.Wait()
}

func (s *FSService) handle(id, action string, data json.RawMessage) *ws.ServiceMessage {
	var d requestData
	if len(data) > 0 {
		if err := json.Unmarshal(data, &d); err != nil {
			s.logger.Debug("error unmarshalling fs payload", zap.String("action", action), zap.Error(err))
			return s.failure(id, action, err)
		}
	}
	if d.Path == "" {
		return s.failure(id, action, errors.New("path required"))
	}

	switch action {
	case actionRead:
		r := s.fs.ReadFile(d.Path)
		return result(s, id, action, r, func(v string) any { return contentData{Content: v} })
	case actionWrite:
		if d.Content == nil {
			return s.failure(id, action, errContentRequired)
		}
		return result(s, id, action, s.fs.WriteFile(d.Path, *d.Content), empty)
	case actionCreateFile:
		return result(s, id, action, s.fs.CreateFile(d.Path), empty)
	case actionCreateFolder:
		return result(s, id, action, s.fs.CreateFolder(d.Path), empty)
	case actionDelete:
		return result(s, id, action, s.fs.Delete(d.Path), empty)
	case actionRename:
		if d.NewPath == "" {
			return s.failure(id, action, errors.New("newPath required"))
		}
		return result(s, id, action, s.fs.Rename(d.Path, d.NewPath), empty)
	case actionMove:
		if d.TargetPath == "" {
			return s.failure(id, action, errors.New("targetPath required"))
		}
		r := s.fs.Move(d.Path, d.TargetPath)
		return result(s, id, action, r, func(v string) any { return moveData{DestinationPath: v} })
	case actionList:
		r := s.fs.ReadDirectory(d.Path)
		return result(s, id, action, r, func(v []fs.DirectoryEntry) any { return listData{Items: v} })
	case actionExists:
		return s.success(id, action, existsData{
			Exists:    s.fs.Exists(d.Path),
			Directory: s.fs.DirectoryExists(d.Path),
		})
	}
	return s.failure(id, action, errors.New("unknown action "+action))
}

func empty(fs.Empty) any { return nil }

func result[T any](s *FSService, id, action string, r fs.Result[T], payload func(T) any) *ws.ServiceMessage {
	if !r.OK() {
		return s.failure(id, action, r.Err)
	}
	return s.success(id, action, payload(r.Value))
}

func (s *FSService) success(id, action string, payload any) *ws.ServiceMessage {
	msg := &ws.ServiceMessage{Service: s.Name(), Id: id, Action: action}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return s.failure(id, action, err)
		}
		msg.Data = data
	}
	return msg
}

func (s *FSService) failure(id, action string, err error) *ws.ServiceMessage {
	return &ws.ServiceMessage{Service: s.Name(), Id: id, Action: action, Error: err.Error()}
}
