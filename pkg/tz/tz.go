package tz

import "time"

// Paris is the Europe/Paris location (CET/CEST with automatic DST).
var Paris *time.Location

func init() {
	var err error
	Paris, err = time.LoadLocation("Europe/Paris")
	if err != nil {
		panic("tz: load Europe/Paris: " + err.Error())
	}
}

// Load resolves an IANA zone name. The empty name means Paris.
func Load(name string) (*time.Location, error) {
	if name == "" || name == "Europe/Paris" {
		return Paris, nil
	}
	return time.LoadLocation(name)
}
