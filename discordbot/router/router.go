package router

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrNotMatched is returned when unknown command is issued
	ErrNotMatched = errors.New("command not matched")
	// ErrInvalidArgument is returned when command arguments could not be parsed or validated
	ErrInvalidArgument = errors.New("invalid argument")
)

// NotMatchedError reports unknown command name
type NotMatchedError struct {
	Name string
}

func (e *NotMatchedError) Error() string {
	return fmt.Sprintf("Command \"%s\" is not found", e.Name)
}

// Unwrap allows errors.Is(err, ErrNotMatched)
func (e *NotMatchedError) Unwrap() error {
	return ErrNotMatched
}

// Router implements routing dispatch
type Router struct {
	Routes             map[string]*Route
	Groups             []*Group
	GroupSorter        GroupSorterFunc
	DefaultRouteSorter RouteSorterFunc
	Middleware         []MiddlewareFunc
	ErrorHandler       ErrorHandlerFunc
	EmbedColor         int
}

// ParseArgs splits command text into arguments, honoring double quotes
func ParseArgs(raw string) (Args, error) {
	reader := csv.NewReader(strings.NewReader(raw))
	reader.Comma = ' '
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	args, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	res := args[:0]

	for _, a := range args {
		if a != "" {
			res = append(res, a)
		}
	}

	return res, nil
}

// Dispatch tries to find matching route and execute it
func (router *Router) Dispatch(
	session Session,
	prefix, userID string,
	msg *discordgo.Message,
) (err error) {
	if msg.Author == nil || msg.Author.ID == userID {
		return nil
	}

	raw := msg.Content
	if prefix == "" || !strings.HasPrefix(raw, prefix) {
		return nil
	}

	raw = strings.TrimPrefix(raw, prefix)

	args, err := ParseArgs(raw)
	if err != nil {
		router.routingError(session, msg, err)

		return err
	}

	if len(args) == 0 {
		return nil
	}

	r := router.Find(args[0])
	if r == nil {
		err = &NotMatchedError{Name: args[0]}

		router.routingError(session, msg, err)

		return err
	}

	return r.handler()(&Context{
		Session: session,
		Message: msg,
		Route:   r,
		Args:    args,
		Prefix:  prefix,
		Raw:     raw,
	})
}

func (router *Router) routingError(session Session, msg *discordgo.Message, err error) {
	if router.ErrorHandler != nil {
		router.ErrorHandler(session, msg, err)
	}
}

// Find returns route by name or alias, nil if none matches
func (router *Router) Find(name string) *Route {
	if r, ok := router.Routes[name]; ok {
		return r
	}

	for _, g := range router.Groups {
		for _, r := range g.Routes {
			if r.Matcher != nil && r.Matcher(name) {
				return r
			}
		}
	}

	return nil
}

// Group returns group with given name
func (router *Router) Group(name string) (cand *Group) {
	cand = &Group{
		Name:        name,
		RouteSorter: router.DefaultRouteSorter,
		Router:      router,
		Data:        make(map[string]interface{}),
	}
	i := sort.Search(len(router.Groups), func(i int) bool {
		return router.GroupSorter(router.Groups[i], cand)
	})

	if i == len(router.Groups) || router.Groups[i].Name != name {
		router.Groups = append(router.Groups[:i], append([]*Group{cand}, router.Groups[i:]...)...)
	} else {
		cand = router.Groups[i]
	}

	return
}

// Route return route with given parameters
func (router *Router) Route(matcher MatcherFunc, name, desc string, handler HandlerFunc) (route *Route) {
	var ok bool
	if route, ok = router.Routes[name]; !ok {
		route = &Route{
			Name:        name,
			Description: desc,
			Matcher:     matcher,
			Handler:     handler,
			Router:      router,
			Data:        make(map[string]interface{}),
		}
		router.Routes[name] = route
	}

	return
}

func nameMatcher(name string) MatcherFunc {
	return func(raw string) bool {
		return raw == name
	}
}

func nameAliasMatcher(name string, alias []string) MatcherFunc {
	return func(raw string) bool {
		if raw == name {
			return true
		}

		for _, a := range alias {
			if raw == a {
				return true
			}
		}

		return false
	}
}

// On creates new route in given group using name matcher
func (router *Router) On(group, name, desc string, handler HandlerFunc) (route *Route) {
	return router.Group(group).On(name, desc, handler)
}

// OnAlias creates new route in given group using alias name matcher
func (router *Router) OnAlias(group, name, desc string, alias []string, handler HandlerFunc) (route *Route) {
	return router.Group(group).OnAlias(name, desc, alias, true, handler)
}

// AppendMiddleware append middleware to end of the chain
func (router *Router) AppendMiddleware(middleware MiddlewareFunc) {
	router.Middleware = append(router.Middleware, middleware)
}

// PrependMiddleware append middleware to beginning of the chain
func (router *Router) PrependMiddleware(middleware MiddlewareFunc) {
	router.Middleware = append([]MiddlewareFunc{middleware}, router.Middleware...)
}
