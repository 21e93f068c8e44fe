package transform

import (
	"encoding/json"
	"net/url"

	"github.com/mssola/user_agent"
	"github.com/zpiroux/dsutils/entity"
)

type UserAgent struct {
	Platform        string          `json:"platform"`
	OperatingSystem OperatingSystem `json:"operatingSystem"`
	Localization    string          `json:"localization"`
	Browser         Browser         `json:"browser"`
	Bot             bool            `json:"bot"`
	Mobile          bool            `json:"mobile"`
}

type OperatingSystem struct {
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	Version  string `json:"version"`
}

type Browser struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	Engine        string `json:"engine"`
	EngineVersion string `json:"engineVersion"`
}

// ParseUserAgent parses a user agent string, which may be URL (query) encoded as commonly found
// in access logs.
func ParseUserAgent(uaString string) UserAgent {
	if str, err := url.QueryUnescape(uaString); err == nil {
		uaString = str
	}
	ua := user_agent.New(uaString)
	os := ua.OSInfo()
	bName, bVersion := ua.Browser()
	eName, eVersion := ua.Engine()
	return UserAgent{
		Platform: ua.Platform(),
		OperatingSystem: OperatingSystem{
			Name:     os.Name,
			FullName: os.FullName,
			Version:  os.Version,
		},
		Localization: ua.Localization(),
		Browser: Browser{
			Name:          bName,
			Version:       bVersion,
			Engine:        eName,
			EngineVersion: eVersion,
		},
		Bot:    ua.Bot(),
		Mobile: ua.Mobile(),
	}
}

func (u UserAgent) String() string {
	jsonStr, _ := json.Marshal(u)
	return string(jsonStr)
}

// UserAgentFeatures parses a string column with user agents into the feature columns
// <Prefix>_Browser, <Prefix>_OS, <Prefix>_Platform (strings) and <Prefix>_Mobile, <Prefix>_Bot
// (bools). Prefix defaults to Col.
type UserAgentFeatures struct {
	Col    string `json:"col"`
	Prefix string `json:"prefix,omitempty"`
}

// OutputNames returns the names of the added columns, in the order they are added.
func (t UserAgentFeatures) OutputNames() []string {
	prefix := featName(t.Prefix, t.Col)
	return []string{
		prefix + "_Browser",
		prefix + "_OS",
		prefix + "_Platform",
		prefix + "_Mobile",
		prefix + "_Bot",
	}
}

func (t UserAgentFeatures) Fit(*entity.Frame, *entity.Column) (entity.Transformer, error) {
	return t, nil
}

func (t UserAgentFeatures) Transform(f *entity.Frame) (*entity.Frame, error) {
	c, err := columnOfKind(f, t.Col, entity.KindString)
	if err != nil {
		return nil, err
	}
	n := c.Len()
	var (
		browsers  = make([]string, n)
		systems   = make([]string, n)
		platforms = make([]string, n)
		mobile    = make([]bool, n)
		bots      = make([]bool, n)
	)
	for i := 0; i < n; i++ {
		if c.IsNull(i) {
			continue
		}
		ua := ParseUserAgent(c.Strings[i])
		browsers[i] = ua.Browser.Name
		systems[i] = ua.OperatingSystem.Name
		platforms[i] = ua.Platform
		mobile[i] = ua.Mobile
		bots[i] = ua.Bot
	}

	names := t.OutputNames()
	nulls := nullMask(n, c)
	out := f.Copy()
	for _, feat := range []*entity.Column{
		entity.NewStringColumn(names[0], browsers),
		entity.NewStringColumn(names[1], systems),
		entity.NewStringColumn(names[2], platforms),
		entity.NewBoolColumn(names[3], mobile),
		entity.NewBoolColumn(names[4], bots),
	} {
		if nulls != nil {
			feat.Nulls = append([]bool(nil), nulls...)
		}
		if err = out.Set(feat); err != nil {
			return nil, err
		}
	}
	return out, nil
}
