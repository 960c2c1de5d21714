package monitor

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/informalsystems/go-actor/internal/logging"
	"github.com/informalsystems/go-actor/pkg/actor"
	"golang.org/x/crypto/bcrypt"
)

func respond(w http.ResponseWriter, code int, msg string) {
	w.WriteHeader(code)
	fmt.Fprint(w, msg+"\n")
}

func stopActor(w http.ResponseWriter, sys *actor.System, id string) {
	ref, err := sys.Lookup(id)
	if err != nil {
		respond(w, http.StatusNotFound, fmt.Sprintf("No such actor: %s", id))
		return
	}
	if err := sys.Stop(ref); err != nil {
		if actor.IsNotFound(err) {
			respond(w, http.StatusOK, "Actor is already stopped")
			return
		}
		respond(w, http.StatusInternalServerError, fmt.Sprintf("Failed to stop actor: %v", err))
		return
	}
	respond(w, http.StatusOK, "Actor successfully stopped")
}

func listActors(w http.ResponseWriter, sys *actor.System) {
	refs := sys.Refs()
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID())
	}
	sort.Strings(ids)
	w.WriteHeader(http.StatusOK)
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
}

// MakeAdminHandler creates an HTTP handler for administrative commands
// against the actor system. Send a POST request with one of the following
// in the body:
//
//	list        lists the IDs of all registered actors, one per line
//	stop        stops every actor in the system
//	stop <id>   stops the actor with the given ID
//
// Requests must carry basic auth credentials matching username and the
// bcrypt passwordHash.
func MakeAdminHandler(
	username, passwordHash string,
	sys *actor.System,
	logger logging.Logger,
) func(http.ResponseWriter, *http.Request) {
	logger.Info("Creating admin endpoint", "username", username)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respond(w, http.StatusMethodNotAllowed, "Unsupported method")
			return
		}
		if err := authenticate(r, username, passwordHash); err != nil {
			logger.Info("Failed authentication attempt", "remote", r.RemoteAddr)
			respond(w, http.StatusUnauthorized, fmt.Sprintf("Error: %v", err))
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			respond(w, http.StatusInternalServerError, "Internal server error while reading request body")
			return
		}
		fields := strings.Fields(string(body))
		switch {
		case len(fields) == 1 && fields[0] == "list":
			listActors(w, sys)
		case len(fields) == 1 && fields[0] == "stop":
			logger.Info("Stopping all actors on request", "remote", r.RemoteAddr)
			sys.StopAll()
			respond(w, http.StatusOK, "All actors stopped")
		case len(fields) == 2 && fields[0] == "stop":
			logger.Info("Stopping actor on request", "id", fields[1], "remote", r.RemoteAddr)
			stopActor(w, sys, fields[1])
		case len(fields) == 0:
			respond(w, http.StatusBadRequest, "Missing command in request")
		default:
			respond(w, http.StatusBadRequest, "Unrecognised command")
		}
	}
}

func authenticate(req *http.Request, username, passwordHash string) error {
	u, p, ok := req.BasicAuth()
	if !ok {
		return fmt.Errorf("missing username and/or password in request")
	}
	if u != username {
		return fmt.Errorf("invalid username and/or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(p)); err != nil {
		return fmt.Errorf("invalid username and/or password")
	}
	return nil
}
