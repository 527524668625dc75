package sonar

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	"golang.org/x/net/websocket"
)

// Server is an http.Server with a broadcast bus.  Browsers plug into the bus
// over websockets; code injects packets with the Injector.
type Server struct {
	http.Server
	*Bus
	*Injector
	user   string
	passwd string
}

func NewServer(name string, connect, disconnect func(Socketer)) *Server {
	var s Server
	s.Bus = NewBus(name+" bus", connect, disconnect)
	s.Injector = NewInjector(name+" injector", s.Bus)
	return &s
}

// BasicAuth turns on basic authentication for handlers wrapped with
// RequireAuth.  An empty user turns it off.
func (s *Server) BasicAuth(user, passwd string) {
	s.user, s.passwd = user, passwd
}

// ServeWebSocket upgrades the request to a websocket and plugs it into the
// bus until the websocket closes
func (s *Server) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	ws := newWebSocket(r.RemoteAddr, s.Bus)
	serv := websocket.Server{Handler: websocket.Handler(ws.serve)}
	serv.ServeHTTP(w, r)
}

// RequireAuth wraps next with basic authentication, if enabled
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, r *http.Request) {

		// skip basic authentication if no user
		if s.user == "" {
			next.ServeHTTP(writer, r)
			return
		}

		ruser, rpasswd, ok := r.BasicAuth()

		if ok {
			userHash := sha256.Sum256([]byte(s.user))
			passHash := sha256.Sum256([]byte(s.passwd))
			ruserHash := sha256.Sum256([]byte(ruser))
			rpassHash := sha256.Sum256([]byte(rpasswd))

			// https://www.alexedwards.net/blog/basic-authentication-in-go
			userMatch := (subtle.ConstantTimeCompare(userHash[:], ruserHash[:]) == 1)
			passMatch := (subtle.ConstantTimeCompare(passHash[:], rpassHash[:]) == 1)

			if userMatch && passMatch {
				next.ServeHTTP(writer, r)
				return
			}
		}

		writer.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
		http.Error(writer, "Unauthorized", http.StatusUnauthorized)
	})
}
