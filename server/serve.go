package server

import (
	"github.com/indigo-web/rgi/errors"
	"github.com/indigo-web/rgi/http"
	"github.com/indigo-web/rgi/http/method"
	"github.com/indigo-web/rgi/transport"
)

// Serve runs the dispatch loop until the session is closed. Any error ends the loop and
// closes the session with it. errors.ErrEmptyPreamble signals that the peer closed the
// connection cleanly between requests. The connection itself isn't closed.
func Serve(conn *transport.Conn, session *Session, handler Handler) error {
	if session.Requests() != 0 {
		return errors.Usagef("session already served %d requests", session.Requests())
	}

	for !session.Closed() {
		if err := serveOnce(conn, session, handler); err != nil {
			session.Close(err.Error())
			return err
		}
	}

	return nil
}

func serveOnce(conn *transport.Conn, session *Session, handler Handler) error {
	request, err := conn.ReadRequest()
	if err != nil {
		return err
	}

	response, err := handler.ServeRGI(session, request, http.DefaultAPI)
	if err != nil {
		return err
	}

	if err = validate(request, response); err != nil {
		return err
	}

	err = conn.WriteResponse(response.Status, response.Reason, response.Headers, response.Body)
	if err != nil {
		return err
	}

	session.ResponseComplete(response.Status, response.Reason)
	return nil
}

func validate(request *http.Request, response *http.Response) error {
	if response == nil {
		return errors.Applicationf("handler returned nil response")
	}

	if !response.Status.Valid() {
		return errors.Applicationf("need 100 <= status <= 599; got %d", response.Status)
	}

	if state := http.StateOf(request.Body); state != http.Consumed {
		return errors.Applicationf("request body not consumed: %T is %s", request.Body, state)
	}

	if request.Method == method.HEAD && response.Body != nil {
		return errors.Applicationf(
			"request method is HEAD, but response body is not nil: %T", response.Body,
		)
	}

	return nil
}
