// Package httpapi exposes a mounted filesystem over a small JSON API.
package httpapi

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/weberc2/blockfs/pkg/filesystem"
	. "github.com/weberc2/blockfs/pkg/types"
	pz "github.com/weberc2/httpeasy"
)

type FileSystem interface {
	filesystem.Operations
	Stat(ino Ino) (InodeInfo, error)
	List(ino Ino) ([]filesystem.FileInfo, error)
	Statfs() filesystem.Statfs
}

type Service struct {
	FileSystem FileSystem
}

type logMsg struct {
	Message string
	Ino     Ino    `json:",omitempty"`
	Name    string `json:",omitempty"`
	Error   string `json:",omitempty"`
}

type CreateRequest struct {
	Name string `json:"name"`

	// Mode holds octal permission bits, e.g. "0644".
	Mode string `json:"mode"`
}

type WriteRequest struct {
	Data []byte `json:"data"`
}

type ReadResponse struct {
	Data []byte `json:"data"`
}

type WriteResponse struct {
	Written int `json:"written"`
}

func (s *Service) Routes() []pz.Route {
	return []pz.Route{{
		Path:    "/api/statfs",
		Method:  "GET",
		Handler: s.Statfs,
	}, {
		Path:    "/api/inodes/{ino}",
		Method:  "GET",
		Handler: s.Stat,
	}, {
		Path:    "/api/inodes/{ino}/entries",
		Method:  "GET",
		Handler: s.List,
	}, {
		Path:    "/api/inodes/{ino}/entries/{name}",
		Method:  "GET",
		Handler: s.Lookup,
	}, {
		Path:    "/api/inodes/{ino}/files",
		Method:  "POST",
		Handler: s.CreateFile,
	}, {
		Path:    "/api/inodes/{ino}/dirs",
		Method:  "POST",
		Handler: s.CreateDirectory,
	}, {
		Path:    "/api/inodes/{ino}/data/{offset}/{length}",
		Method:  "GET",
		Handler: s.Read,
	}, {
		Path:    "/api/inodes/{ino}/data/{offset}",
		Method:  "PUT",
		Handler: s.Write,
	}}
}

func (s *Service) Statfs(r pz.Request) pz.Response {
	return pz.Ok(pz.JSON(s.FileSystem.Statfs()))
}

func (s *Service) Stat(r pz.Request) pz.Response {
	ino, rsp, ok := parseIno(r)
	if !ok {
		return rsp
	}
	info, err := s.FileSystem.Stat(ino)
	if err != nil {
		return errorResponse(err, logMsg{Message: "stat-ing inode", Ino: ino})
	}
	return pz.Ok(pz.JSON(&info))
}

func (s *Service) List(r pz.Request) pz.Response {
	ino, rsp, ok := parseIno(r)
	if !ok {
		return rsp
	}
	entries, err := s.FileSystem.List(ino)
	if err != nil {
		return errorResponse(err, logMsg{Message: "listing directory", Ino: ino})
	}
	if entries == nil {
		entries = []filesystem.FileInfo{}
	}
	return pz.Ok(pz.JSON(entries))
}

func (s *Service) Lookup(r pz.Request) pz.Response {
	ino, rsp, ok := parseIno(r)
	if !ok {
		return rsp
	}
	name := r.Vars["name"]
	info, err := s.FileSystem.Lookup(ino, name)
	if err != nil {
		return errorResponse(err, logMsg{
			Message: "looking up entry",
			Ino:     ino,
			Name:    name,
		})
	}
	return pz.Ok(pz.JSON(&info))
}

func (s *Service) CreateFile(r pz.Request) pz.Response {
	return s.create(r, "file", s.FileSystem.CreateFile)
}

func (s *Service) CreateDirectory(r pz.Request) pz.Response {
	return s.create(r, "directory", s.FileSystem.CreateDirectory)
}

func (s *Service) create(
	r pz.Request,
	kind string,
	create func(parent Ino, name string, mode Mode) (InodeInfo, error),
) pz.Response {
	parent, rsp, ok := parseIno(r)
	if !ok {
		return rsp
	}
	var req CreateRequest
	if err := r.JSON(&req); err != nil {
		return pz.BadRequest(
			errorBody(400, "Malformed create request JSON"),
			logMsg{Message: "parsing create request", Error: err.Error()},
		)
	}
	mode, err := parseMode(req.Mode)
	if err != nil {
		return pz.BadRequest(
			errorBody(400, "Invalid mode `%s`", req.Mode),
			logMsg{Message: "parsing mode", Error: err.Error()},
		)
	}

	info, err := create(parent, req.Name, mode)
	if err != nil {
		return errorResponse(err, logMsg{
			Message: "creating " + kind,
			Ino:     parent,
			Name:    req.Name,
		})
	}
	return pz.Created(pz.JSON(&info), logMsg{
		Message: "created " + kind,
		Ino:     info.Ino,
		Name:    req.Name,
	})
}

func (s *Service) Read(r pz.Request) pz.Response {
	ino, rsp, ok := parseIno(r)
	if !ok {
		return rsp
	}
	offset, err := strconv.ParseInt(r.Vars["offset"], 10, 64)
	if err != nil {
		return badVar("offset", r.Vars["offset"], err)
	}
	length, err := strconv.ParseInt(r.Vars["length"], 10, 64)
	if err != nil {
		return badVar("length", r.Vars["length"], err)
	}

	data, err := s.FileSystem.Read(ino, Byte(offset), Byte(length))
	if err != nil {
		return errorResponse(err, logMsg{Message: "reading file", Ino: ino})
	}
	return pz.Ok(pz.JSON(&ReadResponse{Data: data}))
}

func (s *Service) Write(r pz.Request) pz.Response {
	ino, rsp, ok := parseIno(r)
	if !ok {
		return rsp
	}
	offset, err := strconv.ParseInt(r.Vars["offset"], 10, 64)
	if err != nil {
		return badVar("offset", r.Vars["offset"], err)
	}
	var req WriteRequest
	if err := r.JSON(&req); err != nil {
		return pz.BadRequest(
			errorBody(400, "Malformed write request JSON"),
			logMsg{Message: "parsing write request", Error: err.Error()},
		)
	}

	n, err := s.FileSystem.Write(ino, Byte(offset), req.Data)
	if err != nil {
		return errorResponse(err, logMsg{Message: "writing file", Ino: ino})
	}
	return pz.Ok(
		pz.JSON(&WriteResponse{Written: n}),
		logMsg{Message: "wrote file", Ino: ino},
	)
}

func parseIno(r pz.Request) (Ino, pz.Response, bool) {
	ino, err := strconv.ParseUint(r.Vars["ino"], 10, 64)
	if err != nil {
		return InoNil, badVar("ino", r.Vars["ino"], err), false
	}
	return Ino(ino), pz.Response{}, true
}

func parseMode(s string) (Mode, error) {
	if s == "" {
		return 0o644, nil
	}
	mode, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, err
	}
	if Mode(mode)&^ModePerm != 0 {
		return 0, fmt.Errorf("mode `%s` has non-permission bits", s)
	}
	return Mode(mode), nil
}

func badVar(name, value string, err error) pz.Response {
	return pz.BadRequest(
		errorBody(400, "Invalid %s `%s`", name, value),
		logMsg{Message: "parsing " + name, Error: err.Error()},
	)
}

func errorResponse(err error, logging logMsg) pz.Response {
	logging.Error = err.Error()
	switch {
	case errors.Is(err, NotFoundErr):
		return pz.NotFound(errorBody(404, "%v", err), logging)
	case errors.Is(err, NameTooLongErr),
		errors.Is(err, EmptyNameErr),
		errors.Is(err, InvalidNameErr),
		errors.Is(err, NotADirErr),
		errors.Is(err, NotARegularFileErr),
		errors.Is(err, CopyFailureErr):
		return pz.BadRequest(errorBody(400, "%v", err), logging)
	case errors.Is(err, CapacityExceededErr),
		errors.Is(err, ResourceExhaustedErr):
		return pz.Conflict(errorBody(409, "%v", err), logging)
	default:
		return pz.InternalServerError(logging)
	}
}
