// Package nasa defines the wire types and request parameters of the
// NASA explorer backend.
package nasa

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// APODItem is a single Astronomy Picture of the Day entry.
type APODItem struct {
	Date           string `json:"date"`
	Explanation    string `json:"explanation"`
	HDURL          string `json:"hdurl,omitempty"`
	MediaType      string `json:"media_type"` // "image" or "video"
	ServiceVersion string `json:"service_version,omitempty"`
	Title          string `json:"title"`
	URL            string `json:"url"`
	Copyright      string `json:"copyright,omitempty"`
}

// IsVideo reports whether the entry is a video rather than an image.
func (i APODItem) IsVideo() bool {
	return i.MediaType == "video"
}

// APODResponse holds either a single APOD entry or a list of them.
// The backend returns an object for date queries and an array for
// range and count queries.
type APODResponse struct {
	Items []APODItem

	// List is true when the payload was a JSON array.
	List bool
}

// UnmarshalJSON accepts both an object and an array.
func (r *APODResponse) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("apod: empty payload")
	}

	if data[0] == '[' {
		var items []APODItem
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("apod list: %w", err)
		}
		r.Items = items
		r.List = true
		return nil
	}

	var item APODItem
	if err := json.Unmarshal(data, &item); err != nil {
		return fmt.Errorf("apod item: %w", err)
	}
	r.Items = []APODItem{item}
	r.List = false
	return nil
}

// MarshalJSON writes the shape the response was decoded from.
func (r APODResponse) MarshalJSON() ([]byte, error) {
	if !r.List && len(r.Items) == 1 {
		return json.Marshal(r.Items[0])
	}
	if r.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Items)
}

// MarsCamera describes a rover camera.
type MarsCamera struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	RoverID  int    `json:"rover_id"`
	FullName string `json:"full_name"`
}

// RoverCamera is the short camera description listed on a rover.
type RoverCamera struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

// MarsRover describes a Mars rover mission.
type MarsRover struct {
	ID          int           `json:"id"`
	Name        string        `json:"name"`
	LandingDate string        `json:"landing_date"`
	LaunchDate  string        `json:"launch_date"`
	Status      string        `json:"status"`
	MaxSol      int           `json:"max_sol"`
	MaxDate     string        `json:"max_date"`
	TotalPhotos int           `json:"total_photos"`
	Cameras     []RoverCamera `json:"cameras"`
}

// MarsPhoto is a single rover photograph.
type MarsPhoto struct {
	ID        int        `json:"id"`
	Sol       int        `json:"sol"`
	Camera    MarsCamera `json:"camera"`
	ImgSrc    string     `json:"img_src"`
	EarthDate string     `json:"earth_date"`
	Rover     MarsRover  `json:"rover"`
}

// MarsPhotosResponse is the payload of /api/mars-photos.
type MarsPhotosResponse struct {
	Photos []MarsPhoto `json:"photos"`
}

// MarsRoversResponse is the payload of /api/mars-rovers.
type MarsRoversResponse struct {
	Rovers []MarsRover `json:"rovers"`
}

// DiameterRange is an estimated min/max diameter in one unit.
type DiameterRange struct {
	Min float64 `json:"estimated_diameter_min"`
	Max float64 `json:"estimated_diameter_max"`
}

// EstimatedDiameter holds the diameter estimate in every unit the feed reports.
// Units absent from the payload stay nil.
type EstimatedDiameter struct {
	Kilometers *DiameterRange `json:"kilometers,omitempty"`
	Meters     *DiameterRange `json:"meters,omitempty"`
	Miles      *DiameterRange `json:"miles,omitempty"`
	Feet       *DiameterRange `json:"feet,omitempty"`
}

// RelativeVelocity is reported as decimal strings by the feed.
type RelativeVelocity struct {
	KilometersPerSecond string `json:"kilometers_per_second"`
	KilometersPerHour   string `json:"kilometers_per_hour"`
	MilesPerHour        string `json:"miles_per_hour"`
}

// MissDistance is reported as decimal strings by the feed.
type MissDistance struct {
	Astronomical string `json:"astronomical"`
	Lunar        string `json:"lunar"`
	Kilometers   string `json:"kilometers"`
	Miles        string `json:"miles"`
}

// CloseApproach is one close approach of an object to an orbiting body.
type CloseApproach struct {
	Date             string           `json:"close_approach_date"`
	DateFull         string           `json:"close_approach_date_full"`
	EpochDate        int64            `json:"epoch_date_close_approach"`
	RelativeVelocity RelativeVelocity `json:"relative_velocity"`
	MissDistance     MissDistance     `json:"miss_distance"`
	OrbitingBody     string           `json:"orbiting_body"`
}

// NEOObject is a near-earth object from the feed.
type NEOObject struct {
	Links struct {
		Self string `json:"self"`
	} `json:"links"`
	ID                    string             `json:"id"`
	NEOReferenceID        string             `json:"neo_reference_id"`
	Name                  string             `json:"name"`
	NasaJPLURL            string             `json:"nasa_jpl_url"`
	AbsoluteMagnitudeH    float64            `json:"absolute_magnitude_h"`
	EstimatedDiameter     *EstimatedDiameter `json:"estimated_diameter,omitempty"`
	PotentiallyHazardous  bool               `json:"is_potentially_hazardous_asteroid"`
	CloseApproachData     []CloseApproach    `json:"close_approach_data"`
	SentryObject          bool               `json:"is_sentry_object"`
}

// NEOResponse is the payload of /api/neo. NearEarthObjects is keyed by
// calendar date (YYYY-MM-DD).
type NEOResponse struct {
	Links struct {
		Next string `json:"next,omitempty"`
		Prev string `json:"prev,omitempty"`
		Self string `json:"self,omitempty"`
	} `json:"links"`
	ElementCount     int                    `json:"element_count"`
	NearEarthObjects map[string][]NEOObject `json:"near_earth_objects"`
}

// MediaData is the descriptive block of a media library item.
type MediaData struct {
	Center           string   `json:"center"`
	Title            string   `json:"title"`
	NasaID           string   `json:"nasa_id"`
	DateCreated      string   `json:"date_created"`
	Keywords         []string `json:"keywords"`
	MediaType        string   `json:"media_type"` // "image", "video" or "audio"
	Description      string   `json:"description"`
	Description508   string   `json:"description_508,omitempty"`
	SecondaryCreator string   `json:"secondary_creator,omitempty"`
	Location         string   `json:"location,omitempty"`
	Album            []string `json:"album,omitempty"`
	Photographer     string   `json:"photographer,omitempty"`
}

// MediaLink points to a rendition of a media item.
type MediaLink struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Render string `json:"render,omitempty"`
}

// MediaItem is a single NASA Image and Video Library result.
type MediaItem struct {
	Href  string      `json:"href"`
	Data  []MediaData `json:"data"`
	Links []MediaLink `json:"links"`
}

// CollectionLink is a pagination link of a search collection.
type CollectionLink struct {
	Rel    string `json:"rel"`
	Prompt string `json:"prompt"`
	Href   string `json:"href"`
}

// SearchResponse is the payload of /api/search.
type SearchResponse struct {
	Collection struct {
		Version  string      `json:"version"`
		Href     string      `json:"href"`
		Items    []MediaItem `json:"items"`
		Metadata struct {
			TotalHits int `json:"total_hits"`
		} `json:"metadata"`
		Links []CollectionLink `json:"links,omitempty"`
	} `json:"collection"`
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Position is a J2000 position vector.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternions is the spacecraft attitude.
type Quaternions struct {
	Q0 float64 `json:"q0"`
	Q1 float64 `json:"q1"`
	Q2 float64 `json:"q2"`
	Q3 float64 `json:"q3"`
}

// EPICImage is a single Earth Polychromatic Imaging Camera frame record.
type EPICImage struct {
	Identifier          string      `json:"identifier"`
	Caption             string      `json:"caption"`
	Image               string      `json:"image"`
	Version             string      `json:"version"`
	Date                string      `json:"date"`
	CentroidCoordinates Coordinates `json:"centroid_coordinates"`
	DscovrPosition      Position    `json:"dscovr_j2000_position"`
	LunarPosition       Position    `json:"lunar_j2000_position"`
	SunPosition         Position    `json:"sun_j2000_position"`
	AttitudeQuaternions Quaternions `json:"attitude_quaternions"`
}

// EPICResponse is the payload of /api/epic.
type EPICResponse []EPICImage

// StatsResponse is the aggregate payload of /api/stats.
type StatsResponse struct {
	APODCount        int `json:"apod_count,omitempty"`
	MarsPhotosCount  int `json:"mars_photos_count,omitempty"`
	NEOCount         int `json:"neo_count,omitempty"`
	EPICCount        int `json:"epic_count,omitempty"`
	MediaCount       int `json:"media_count,omitempty"`
	TotalMissions    int `json:"totalMissions,omitempty"`
	PhotosToday      int `json:"photosToday,omitempty"`
	NearEarthObjects int `json:"nearEarthObjects,omitempty"`
	DaysActive       int `json:"daysActive,omitempty"`
}

// NewsItem is a single entry of the news feed.
type NewsItem struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Date     string   `json:"date"`
	Summary  string   `json:"summary"`
	URL      string   `json:"url"`
	ImageURL string   `json:"image_url"`
	Source   string   `json:"source"`
	Tags     []string `json:"tags"`
}

// NewsResponse is the payload of /api/search/news.
type NewsResponse []NewsItem

// HealthResponse is the payload of /api/health.
type HealthResponse struct {
	Status    string  `json:"status"`
	Message   string  `json:"message"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}
