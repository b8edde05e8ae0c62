package portal

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/jlpinilla/MediaEdu/form"
	"github.com/jlpinilla/MediaEdu/identity"
	"github.com/jlpinilla/MediaEdu/record"
	"github.com/jlpinilla/MediaEdu/rtc"

	logger "github.com/sirupsen/logrus"
)

const authMarker = "Authorization: Basic"

// CredentialVerifier decides whether the value of a presented Basic
// authorization header is acceptable. The portal only requires the header
// to be present; verification is a pluggable capability so a stricter
// policy can be substituted without touching the protocol handling.
type CredentialVerifier interface {
	Verify(credential string) bool
}

// AcceptAll passes any presented credential. This is the shipped behavior:
// the portal is reachable only on the node's own access point and the gate
// is presence-of-header, a documented gap rather than a security boundary.
type AcceptAll struct{}

func (AcceptAll) Verify(string) bool { return true }

// Result reports what one served connection did.
type Result struct {
	// Applied is true when a form submission was applied and persisted;
	// the mode controller reacts by returning to normal mode.
	Applied bool
}

// Handler services one portal connection at a time: it frames the raw
// request, gates on the authorization header, and either renders the
// configuration page or applies a submitted form to the record.
type Handler struct {
	rec      *record.Record
	slot     record.Slot
	id       identity.Identity
	clock    rtc.RTC
	verifier CredentialVerifier

	// ReadTimeout bounds how long a connected-but-silent client can hold
	// the tick loop.
	ReadTimeout time.Duration
}

func NewHandler(rec *record.Record, slot record.Slot, id identity.Identity, clock rtc.RTC) *Handler {
	return &Handler{
		rec:         rec,
		slot:        slot,
		id:          id,
		clock:       clock,
		verifier:    AcceptAll{},
		ReadTimeout: 5 * time.Second,
	}
}

// SetVerifier swaps the credential verification capability.
func (h *Handler) SetVerifier(v CredentialVerifier) {
	h.verifier = v
}

// Serve consumes one client connection synchronously. Malformed input
// (overflow, read failure, timeout) closes the connection without any
// response.
func (h *Handler) Serve(conn net.Conn) Result {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(h.ReadTimeout))

	frame := NewFrame()
	rd := bufio.NewReader(conn)
	for {
		b, err := rd.ReadByte()
		if err != nil {
			logger.Infof("Portal read ended before headers [%v]", err)
			return Result{}
		}
		done, err := frame.Append(b)
		if err != nil {
			logger.Errorf("Portal request dropped [%v]", err)
			return Result{}
		}
		if done {
			break
		}
	}

	if !h.authorized(frame.Text()) {
		logger.Info("Portal request without credentials, challenging")
		fmt.Fprint(conn, "HTTP/1.1 401 Unauthorized\r\n"+
			"WWW-Authenticate: Basic realm=\"MediaEdu\"\r\n"+
			"Connection: close\r\n\r\n")
		return Result{}
	}

	// No method/path routing beyond this: a request line without POST is
	// served the configuration page.
	if strings.Contains(frame.FirstLine(), "POST") {
		if err := h.drainBody(rd, frame); err != nil {
			logger.Errorf("Portal request dropped [%v]", err)
			return Result{}
		}
		return h.apply(conn, frame.Text())
	}

	h.renderPage(conn)
	return Result{}
}

func (h *Handler) authorized(text string) bool {
	i := strings.Index(text, authMarker)
	if i < 0 {
		return false
	}
	cred, _ := form.ExtractField(text[i:], authMarker+" ")
	return h.verifier.Verify(cred)
}

// drainBody reads whatever the client sends after the header block, until
// it closes, goes quiet past the deadline, or hits the frame cap. There is
// no Content-Length accounting; field extraction scans by delimiter.
func (h *Handler) drainBody(rd *bufio.Reader, frame *RequestFrame) error {
	buf := make([]byte, 512)
	for {
		n, err := rd.Read(buf)
		if n > 0 {
			if aerr := frame.AppendBody(buf[:n]); aerr != nil {
				return aerr
			}
		}
		if err != nil {
			return nil
		}
	}
}

func (h *Handler) renderPage(conn net.Conn) {
	now := h.clock.Now().Format("2006-01-02 15:04")
	page, err := renderConfigPage(h.rec, h.id, now)
	if err != nil {
		logger.Errorf("Failed to render portal page [%v]", err)
		return
	}
	writeOK(conn, page)
}

// apply extracts each recognized field from the full raw request text and
// folds it into the record. Lookup is over the whole frame, headers
// included, for compatibility with the original portal: a header that
// happens to contain "name=value" can match. Fields are independent;
// absence leaves the record field unchanged.
func (h *Handler) apply(conn net.Conn, text string) Result {
	logger.Info("Applying portal submission")

	h.applyText(text, "ssid=", &h.rec.NetworkName)
	h.applyText(text, "password=", &h.rec.NetworkSecret)
	h.applyText(text, "ubicacion=", &h.rec.SiteLabel)
	h.applyText(text, "serverMysql=", &h.rec.UploadHost)
	h.applyText(text, "userMysql=", &h.rec.UploadUser)
	h.applyText(text, "passMysql=", &h.rec.UploadSecret)
	h.applyText(text, "dbMysql=", &h.rec.UploadDatabase)

	if v, ok := h.decoded(text, "horaInicio="); ok {
		if hh, mm, ok := parseHourMinute(v); ok {
			h.rec.Window.StartHour, h.rec.Window.StartMinute = hh, mm
		}
	}
	if v, ok := h.decoded(text, "horaFin="); ok {
		if hh, mm, ok := parseHourMinute(v); ok {
			h.rec.Window.EndHour, h.rec.Window.EndMinute = hh, mm
		}
	}
	if v, ok := h.decoded(text, "fechaHora="); ok {
		if t, err := time.ParseInLocation("2006-01-02T15:04", v, time.Local); err == nil {
			if err := h.clock.Set(t); err != nil {
				logger.Errorf("Failed to set clock [%v]", err)
			}
		} else {
			logger.Infof("Ignoring malformed date/time field [%v]", err)
		}
	}

	h.rec.Configured = true
	if err := h.slot.Store(h.rec.Marshal()); err != nil {
		logger.Errorf("Failed to persist configuration [%v]", err)
	} else {
		logger.WithFields(h.rec.Fields()).Info("Configuration persisted")
	}

	writeOK(conn, confirmPage)
	return Result{Applied: true}
}

// applyText folds one bounded text field in if present. The field name is
// logged on truncation but the value never is: it may be a secret.
func (h *Handler) applyText(text, marker string, dst *record.BoundedText) {
	v, ok := h.decoded(text, marker)
	if !ok {
		return
	}
	if dst.Set(v) {
		logger.Infof("Field %v truncated to %v bytes", strings.TrimSuffix(marker, "="), dst.Cap()-1)
	}
}

func (h *Handler) decoded(text, marker string) (string, bool) {
	v, ok := form.ExtractField(text, marker)
	if !ok {
		return "", false
	}
	return form.PercentDecode(v), true
}

func parseHourMinute(v string) (int, int, bool) {
	hs, ms, found := strings.Cut(v, ":")
	if !found {
		return 0, 0, false
	}
	hh, err := strconv.Atoi(hs)
	if err != nil || hh < 0 || hh > 23 {
		return 0, 0, false
	}
	mm, err := strconv.Atoi(ms)
	if err != nil || mm < 0 || mm > 59 {
		return 0, 0, false
	}
	return hh, mm, true
}

func writeOK(conn net.Conn, body string) {
	fmt.Fprintf(conn, "HTTP/1.1 200 OK\r\n"+
		"Content-Type: text/html\r\n"+
		"Content-Length: %d\r\n"+
		"Connection: close\r\n\r\n%s", len(body), body)
}
