package nasa

import (
	"net/url"
	"strconv"
)

// APODParams selects Astronomy Picture of the Day entries.
type APODParams struct {
	Date      string
	StartDate string
	EndDate   string
	Count     int
	Thumbs    bool
}

// Values renders the set fields as query parameters.
func (p APODParams) Values() url.Values {
	v := url.Values{}
	setString(v, "date", p.Date)
	setString(v, "start_date", p.StartDate)
	setString(v, "end_date", p.EndDate)
	if p.Count > 0 {
		v.Set("count", strconv.Itoa(p.Count))
	}
	if p.Thumbs {
		v.Set("thumbs", "true")
	}
	return v
}

// MarsPhotosParams selects rover photographs. Sol is a pointer because
// sol 0 (landing day) is a valid value.
type MarsPhotosParams struct {
	Rover     string
	Sol       *int
	EarthDate string
	Camera    string
	Page      int
}

// Values renders the set fields as query parameters.
func (p MarsPhotosParams) Values() url.Values {
	v := url.Values{}
	setString(v, "rover", p.Rover)
	if p.Sol != nil {
		v.Set("sol", strconv.Itoa(*p.Sol))
	}
	setString(v, "earth_date", p.EarthDate)
	setString(v, "camera", p.Camera)
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	return v
}

// Sol returns a pointer to s for use in MarsPhotosParams.
func Sol(s int) *int {
	return &s
}

// NEOParams selects a near-earth-object feed window. The backend rejects
// windows longer than 7 days.
type NEOParams struct {
	StartDate string
	EndDate   string
}

// Values renders the set fields as query parameters.
func (p NEOParams) Values() url.Values {
	v := url.Values{}
	setString(v, "start_date", p.StartDate)
	setString(v, "end_date", p.EndDate)
	return v
}

// SearchParams queries the NASA Image and Video Library.
type SearchParams struct {
	Q         string
	MediaType string // "image", "video" or "audio"
	YearStart string
	YearEnd   string
	Page      int
}

// Values renders the set fields as query parameters. q is always sent.
func (p SearchParams) Values() url.Values {
	v := url.Values{}
	v.Set("q", p.Q)
	setString(v, "media_type", p.MediaType)
	setString(v, "year_start", p.YearStart)
	setString(v, "year_end", p.YearEnd)
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	return v
}

// EPICParams selects EPIC frames for a day.
type EPICParams struct {
	Date string
}

// Values renders the set fields as query parameters.
func (p EPICParams) Values() url.Values {
	v := url.Values{}
	setString(v, "date", p.Date)
	return v
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}
