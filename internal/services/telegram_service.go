package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// TelegramService handles sending notifications to Telegram.
type TelegramService struct {
	botToken    string
	adminChatID string
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to the specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// OrderNotification contains order data for the admin notification.
type OrderNotification struct {
	OrderNumber string
	UserName    string
	UserEmail   string
	ItemCount   int
	Amount      int64
	Status      string
}

// FormatCredits formats a credit amount with thousand separators.
func FormatCredits(amount int64) string {
	str := fmt.Sprintf("%d", amount)

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return result.String() + " credits"
}

// NotifyNewOrder sends a new-order notification to the admin chat.
func (s *TelegramService) NotifyNewOrder(order OrderNotification) error {
	var text strings.Builder
	text.WriteString("<b>New order placed</b>\n")
	text.WriteString(fmt.Sprintf("Order: <code>%s</code>\n", order.OrderNumber))
	text.WriteString(fmt.Sprintf("User: %s (%s)\n", order.UserName, order.UserEmail))
	text.WriteString(fmt.Sprintf("Items: %d\n", order.ItemCount))
	text.WriteString(fmt.Sprintf("Total: %s\n", FormatCredits(order.Amount)))
	text.WriteString(fmt.Sprintf("Status: %s", order.Status))

	return s.SendToAdmin(text.String())
}
