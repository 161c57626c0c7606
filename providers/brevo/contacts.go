package brevo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"celluiq/config"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// WelcomePayload ist der Webhook-Body beim Anlegen eines neuen Nutzers.
type WelcomePayload struct {
	Type   string `json:"type"`
	Record struct {
		ID              string `json:"id"`
		Email           string `json:"email"`
		RawUserMetaData struct {
			FullName string `json:"full_name"`
		} `json:"raw_user_meta_data"`
	} `json:"record"`
}

type contactRequest struct {
	Email         string            `json:"email"`
	Attributes    map[string]string `json:"attributes"`
	UpdateEnabled bool              `json:"updateEnabled"`
	ListIDs       []int             `json:"listIds"`
}

// Client legt Kontakte in Brevo an.
type Client struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewClient erstellt einen neuen Brevo-Client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{Config: cfg, Logger: logger}
}

// SplitFullName trennt "Vorname Nachname"; alles nach dem ersten Leerzeichen ist der Nachname.
func SplitFullName(fullName string) (first, last string) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// AddContact fügt den Kontakt der konfigurierten Liste hinzu. Bestehende Kontakte werden aktualisiert.
func (c *Client) AddContact(ctx context.Context, email, fullName string) error {
	if c.Config.BrevoAPIKey == "" {
		return fmt.Errorf("brevo api key ist nicht konfiguriert")
	}
	first, last := SplitFullName(fullName)
	body, err := json.Marshal(contactRequest{
		Email:         email,
		Attributes:    map[string]string{"FIRSTNAME": first, "LASTNAME": last},
		UpdateEnabled: true,
		ListIDs:       []int{c.Config.BrevoListID},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Config.BrevoBaseURL+"/contacts", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.Config.BrevoAPIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("brevo request failed with status %d: %s", resp.StatusCode, string(msg))
	}
	c.Logger.Info("Kontakt zu Brevo hinzugefügt", zap.Int("list_id", c.Config.BrevoListID))
	return nil
}
