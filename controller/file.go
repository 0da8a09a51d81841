package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"xide/service/fs"
)

type FileController struct {
	files *fs.Service
}

func NewFileController(files *fs.Service) *FileController {
	return &FileController{files: files}
}

func (fc *FileController) DirectoryExists(c *gin.Context) {
	path, ok := queryPath(c)
	if !ok {
		return
	}
	succeed(c, gin.H{"exists": fc.files.DirectoryExists(path)})
}

func (fc *FileController) ReadDirectory(c *gin.Context) {
	var req pathRequest
	if !bindJSON(c, &req) || !required(c, "path", req.Path) {
		return
	}
	fc.readDirectory(c, req.Path)
}

// ReadDirectoryQuery is the GET form of ReadDirectory.
func (fc *FileController) ReadDirectoryQuery(c *gin.Context) {
	path, ok := queryPath(c)
	if !ok {
		return
	}
	fc.readDirectory(c, path)
}

func (fc *FileController) readDirectory(c *gin.Context, path string) {
	respond(c, fc.files.ReadDirectory(path), func(items []fs.DirectoryEntry) gin.H {
		return gin.H{"items": items}
	})
}

func (fc *FileController) ReadFile(c *gin.Context) {
	path, ok := queryPath(c)
	if !ok {
		return
	}
	respond(c, fc.files.ReadFile(path), func(content string) gin.H {
		return gin.H{"content": content}
	})
}

func (fc *FileController) WriteFile(c *gin.Context) {
	var req writeRequest
	if !bindJSON(c, &req) || !required(c, "path", req.Path) {
		return
	}
	if req.Content == nil {
		fail(c, http.StatusBadRequest, "content required")
		return
	}
	respond[fs.Empty](c, fc.files.WriteFile(req.Path, *req.Content), nil)
}

func (fc *FileController) CreateFile(c *gin.Context) {
	var req pathRequest
	if !bindJSON(c, &req) || !required(c, "path", req.Path) {
		return
	}
	respond[fs.Empty](c, fc.files.CreateFile(req.Path), nil)
}

func (fc *FileController) CreateFolder(c *gin.Context) {
	var req pathRequest
	if !bindJSON(c, &req) || !required(c, "path", req.Path) {
		return
	}
	respond[fs.Empty](c, fc.files.CreateFolder(req.Path), nil)
}

func (fc *FileController) Delete(c *gin.Context) {
	var req pathRequest
	if !bindJSON(c, &req) || !required(c, "path", req.Path) {
		return
	}
	respond[fs.Empty](c, fc.files.Delete(req.Path), nil)
}

func (fc *FileController) Rename(c *gin.Context) {
	var req renameRequest
	if !bindJSON(c, &req) || !required(c, "oldPath", req.OldPath, "newPath", req.NewPath) {
		return
	}
	respond[fs.Empty](c, fc.files.Rename(req.OldPath, req.NewPath), nil)
}

func (fc *FileController) Move(c *gin.Context) {
	var req moveRequest
	if !bindJSON(c, &req) || !required(c, "sourcePath", req.SourcePath, "targetPath", req.TargetPath) {
		return
	}
	respond(c, fc.files.Move(req.SourcePath, req.TargetPath), func(dest string) gin.H {
		return gin.H{"destinationPath": dest}
	})
}

func (fc *FileController) Exists(c *gin.Context) {
	path, ok := queryPath(c)
	if !ok {
		return
	}
	succeed(c, gin.H{"exists": fc.files.Exists(path)})
}
