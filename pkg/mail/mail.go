// Package mail sends frames as CSV attachments by e-mail, with SMTP server and message content
// configured in an INI file.
package mail

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/teltech/logger"
	"github.com/zpiroux/dsutils/entity"
	"gopkg.in/gomail.v2"
	"gopkg.in/ini.v1"
)

const (
	DefaultSMTPPort = 25
	subjectSuffix   = " / Generated on "
	subjectTsFormat = "2006-01-02 15:04:05"
	dialTimeout     = 10 * time.Second
	localName       = "localhost"
)

var log *logger.Log

func init() {
	log = logger.New()
}

type ServerConfig struct {
	Host     string
	User     string
	Password string
	Port     int
	StartTLS bool
}

type ContentConfig struct {
	Subject  string
	From     string
	To       []string
	Body     string
	Filename string
}

type Config struct {
	Server  ServerConfig
	Content ContentConfig
}

// LoadConfig reads the mail config from an INI file with the following sections:
//
//	[server]
//	EMAIL_HOST = smtp.example.com
//	EMAIL_HOST_USER = user
//	EMAIL_HOST_PASSWORD = password
//	EMAIL_PORT = 587
//	EMAIL_TTLS = 1
//
//	[content]
//	SUBJECT = Daily numbers
//	FROM = reports@example.com
//	TO = someone@example.com, another@example.com
//	BODY = Numbers attached.
//	FILENAME = numbers.csv
//
// EMAIL_PORT defaults to 25. Any non-empty EMAIL_TTLS makes sending fail unless the server
// offers STARTTLS, see NewDialer.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	file, err := ini.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("could not load mail config file %s: %w", path, err)
	}
	server, err := file.GetSection("server")
	if err != nil {
		return cfg, fmt.Errorf("invalid mail config file %s: %w", path, err)
	}
	content, err := file.GetSection("content")
	if err != nil {
		return cfg, fmt.Errorf("invalid mail config file %s: %w", path, err)
	}

	cfg.Server = ServerConfig{
		Host:     server.Key("EMAIL_HOST").String(),
		User:     server.Key("EMAIL_HOST_USER").String(),
		Password: server.Key("EMAIL_HOST_PASSWORD").String(),
		Port:     server.Key("EMAIL_PORT").MustInt(DefaultSMTPPort),
		StartTLS: server.Key("EMAIL_TTLS").String() != "",
	}
	cfg.Content = ContentConfig{
		Subject:  content.Key("SUBJECT").String(),
		From:     content.Key("FROM").String(),
		Body:     content.Key("BODY").String(),
		Filename: content.Key("FILENAME").String(),
	}
	for _, to := range strings.Split(content.Key("TO").String(), ",") {
		if to = strings.TrimSpace(to); to != "" {
			cfg.Content.To = append(cfg.Content.To, to)
		}
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Server.Host == "":
		return fmt.Errorf("mail config: EMAIL_HOST is required")
	case c.Content.From == "":
		return fmt.Errorf("mail config: FROM is required")
	case len(c.Content.To) == 0:
		return fmt.Errorf("mail config: TO is required")
	case c.Content.Filename == "":
		return fmt.Errorf("mail config: FILENAME is required")
	}
	return nil
}

// Dialer sends messages, as done by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// ErrStartTLSNotSupported is returned when STARTTLS is required but not offered by the server.
var ErrStartTLSNotSupported = errors.New("SMTP server does not support STARTTLS")

// NewDialer creates an SMTP dialer from the server config. gomail upgrades to TLS whenever the
// server offers STARTTLS. With StartTLS set, sending also fails if the server does not offer it,
// instead of falling back to plain text.
func NewDialer(cfg ServerConfig) Dialer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	if !cfg.StartTLS {
		return d
	}
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return &startTLSDialer{addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)), next: d}
}

type startTLSDialer struct {
	addr string
	next Dialer
}

func (d *startTLSDialer) DialAndSend(m ...*gomail.Message) error {
	if err := requireStartTLS(d.addr); err != nil {
		return err
	}
	return d.next.DialAndSend(m...)
}

// requireStartTLS checks the extensions advertised by the server at addr.
func requireStartTLS(addr string) error {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return err
	}
	host, _, _ := net.SplitHostPort(addr)
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()
	if err = c.Hello(localName); err != nil {
		return err
	}
	ok, _ := c.Extension("STARTTLS")
	_ = c.Quit()
	if !ok {
		return fmt.Errorf("%w: %s", ErrStartTLSNotSupported, addr)
	}
	return nil
}

// SendFrame sends the frame as a CSV attachment, as configured in the INI file configPath.
func SendFrame(f *entity.Frame, configPath string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	return Send(NewDialer(cfg.Server), f, cfg.Content, time.Now())
}

// Send sends the frame as a CSV attachment using d. The time now is appended to the subject.
func Send(d Dialer, f *entity.Frame, content ContentConfig, now time.Time) error {
	m, err := NewMessage(f, content, now)
	if err != nil {
		return err
	}
	log.Infof("sending frame with %d rows as %s to %v", f.NumRows(), content.Filename, content.To)
	if err = d.DialAndSend(m); err != nil {
		return fmt.Errorf("could not send mail: %w", err)
	}
	return nil
}

// NewMessage creates the mail message with the frame as CSV attachment.
func NewMessage(f *entity.Frame, content ContentConfig, now time.Time) (*gomail.Message, error) {
	var csv bytes.Buffer
	if err := f.WriteCSV(&csv); err != nil {
		return nil, fmt.Errorf("could not write frame as CSV: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", content.From)
	m.SetHeader("To", content.To...)
	m.SetHeader("Subject", content.Subject+subjectSuffix+now.Format(subjectTsFormat))
	m.SetBody("text/plain", content.Body)
	m.Attach(content.Filename,
		gomail.SetHeader(map[string][]string{"Content-Type": {"text/csv; charset=UTF-8"}}),
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(csv.Bytes())
			return err
		}))
	return m, nil
}
