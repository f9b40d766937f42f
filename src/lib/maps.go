package lib

import (
	"context"
	"fmt"
	"log"
	"prs/src/config"

	"googlemaps.github.io/maps"
)

var mapsClient *maps.Client

func GetMapsClient() (*maps.Client, error) {
	if mapsClient != nil {
		return mapsClient, nil
	}
	cli, err := maps.NewClient(maps.WithAPIKey(config.GAPI_API_KEY))
	if err != nil {
		return nil, err
	}
	mapsClient = cli
	return cli, nil
}

// GeocodeAddress resolves a listing address to coordinates. Returns nil
// coordinates when the address does not resolve.
func GeocodeAddress(address, city, country string) (*float64, *float64, error) {
	cli, err := GetMapsClient()
	if err != nil {
		return nil, nil, err
	}
	results, err := cli.Geocode(context.Background(), &maps.GeocodingRequest{
		Address: fmt.Sprintf("%s, %s, %s", address, city, country),
	})
	if err != nil {
		log.Printf("Error geocoding address: %s\n", err.Error())
		return nil, nil, err
	}
	if len(results) == 0 {
		return nil, nil, nil
	}
	loc := results[0].Geometry.Location
	return &loc.Lat, &loc.Lng, nil
}
