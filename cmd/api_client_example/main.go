package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

type place struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

func main() {
	fmt.Println("Weather Forecast API Client Example")
	fmt.Println("===================================")

	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the forecast service")
	query := flag.String("q", "oslo", "Place to search for")
	flag.Parse()

	client := &http.Client{Timeout: 30 * time.Second}

	// Find a place to query
	fmt.Printf("\nSearching places for %q...\n", *query)
	var placesData struct {
		Places []place `json:"places"`
	}
	searchURL := fmt.Sprintf("%s/api/places?q=%s&limit=5", *baseURL, url.QueryEscape(*query))
	if err := getJSON(client, searchURL, &placesData); err != nil {
		fmt.Printf("Error searching places: %v\n", err)
		os.Exit(1)
	}

	if len(placesData.Places) == 0 {
		fmt.Println("No matching places.")
		return
	}
	for _, p := range placesData.Places {
		fmt.Printf("  %s (%s)\n", p.Name, p.ID)
	}

	// Save the first match
	selected := placesData.Places[0]
	body, _ := json.Marshal(selected)
	saveResp, err := client.Post(*baseURL+"/api/favorites", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Printf("Error saving favorite: %v\n", err)
		os.Exit(1)
	}
	saveResp.Body.Close()
	fmt.Printf("\nSaved %s as a favorite (status %d)\n", selected.Name, saveResp.StatusCode)

	// Get the forecast for the selected place
	fmt.Printf("Fetching forecast for %s...\n", selected.Name)
	var forecastData map[string]interface{}
	if err := getJSON(client, fmt.Sprintf("%s/api/forecast/%s", *baseURL, selected.ID), &forecastData); err != nil {
		fmt.Printf("Error fetching forecast: %v\n", err)
		os.Exit(1)
	}

	// Pretty print the result
	prettyJSON, _ := json.MarshalIndent(forecastData, "", "  ")
	fmt.Printf("\nForecast for %s:\n%s\n", selected.Name, string(prettyJSON))
}

func getJSON(client *http.Client, target string, v interface{}) error {
	resp, err := client.Get(target)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	return json.Unmarshal(body, v)
}
