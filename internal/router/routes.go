// Package router maps paths to pages and guards the protected ones.
package router

import (
	"net/url"
	"strings"
)

// Page identifies a screen.
type Page int

const (
	PageNotFound Page = iota
	PageHome
	PageAllJobs
	PageLogin
	PageRegister
	PageAddJob
	PageJobDetail
	PageUpdateJob
	PageMyJobs
	PageMyTasks
)

const (
	PathHome     = "/"
	PathAllJobs  = "/allJobs"
	PathLogin    = "/login"
	PathRegister = "/register"
	PathAddJob   = "/addJob"
	PathMyJobs   = "/myAddedJobs"
	PathMyTasks  = "/my-accepted-tasks"
)

// Route is one entry of the route table.
type Route struct {
	Pattern   string
	Page      Page
	Title     string
	Protected bool
}

// Routes is the application's route table.
var Routes = []Route{
	{Pattern: PathHome, Page: PageHome, Title: "Home"},
	{Pattern: PathAllJobs, Page: PageAllJobs, Title: "All Jobs"},
	{Pattern: PathLogin, Page: PageLogin, Title: "Login"},
	{Pattern: PathRegister, Page: PageRegister, Title: "Register"},
	{Pattern: PathAddJob, Page: PageAddJob, Title: "Add Job", Protected: true},
	{Pattern: "/job/:id", Page: PageJobDetail, Title: "Job Details", Protected: true},
	{Pattern: "/updateJob/:id", Page: PageUpdateJob, Title: "Update Job", Protected: true},
	{Pattern: PathMyJobs, Page: PageMyJobs, Title: "My Posted Jobs", Protected: true},
	{Pattern: PathMyTasks, Page: PageMyTasks, Title: "My Accepted Tasks", Protected: true},
}

// JobPath returns the detail path for a job.
func JobPath(id string) string { return "/job/" + url.PathEscape(id) }

// UpdateJobPath returns the edit path for a job.
func UpdateJobPath(id string) string { return "/updateJob/" + url.PathEscape(id) }

// Match is a route matched against a concrete path.
type Match struct {
	Route  Route
	Path   string
	Params map[string]string
}

// Param returns a path parameter or "".
func (m Match) Param(name string) string { return m.Params[name] }

// Lookup finds the route for path. Trailing slashes are ignored.
func Lookup(path string) (Match, bool) {
	path = normalize(path)
	segs := split(path)
	for _, r := range Routes {
		if params, ok := matchPattern(split(r.Pattern), segs); ok {
			return Match{Route: r, Path: path, Params: params}, true
		}
	}
	return Match{Path: path}, false
}

func matchPattern(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	var params map[string]string
	for i, p := range pattern {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			v, err := url.PathUnescape(segs[i])
			if err != nil || v == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[name] = v
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}

func normalize(path string) string {
	if path == "" {
		return PathHome
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = PathHome
		}
	}
	return path
}

func split(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
