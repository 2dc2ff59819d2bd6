package platform

import (
	"fmt"
	"strings"
)

// appleScript builds the osascript program that posts a Notification
// Center banner. Critical notifications play an alert sound.
func appleScript(title, body string, opts Options) string {
	script := fmt.Sprintf("display notification %q with title %q subtitle %q", body, title, opts.appName())
	if opts.Urgency == UrgencyCritical {
		script += ` sound name "Basso"`
	}
	return script
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// toastScript builds the PowerShell program that shows a Windows toast. An
// icon switches to the image-and-text template.
func toastScript(title, body string, opts Options) string {
	icon := strings.TrimSpace(opts.IconPath)
	template := "ToastText02"
	if icon != "" {
		template = "ToastImageAndText02"
	}
	lines := []string{
		`[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType=Windows Runtime] > $null`,
		`$template = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::` + template + `)`,
		`$texts = $template.GetElementsByTagName("text")`,
		`$texts.Item(0).AppendChild($template.CreateTextNode(` + psQuote(title) + `)) > $null`,
		`$texts.Item(1).AppendChild($template.CreateTextNode(` + psQuote(body) + `)) > $null`,
	}
	if icon != "" {
		lines = append(lines, `$template.GetElementsByTagName("image").Item(0).SetAttribute("src", `+psQuote(icon)+`)`)
	}
	lines = append(lines,
		`$toast = [Windows.UI.Notifications.ToastNotification]::new($template)`,
		`[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier(`+psQuote(opts.appName())+`).Show($toast)`,
	)
	return strings.Join(lines, "; ") + ";"
}
