package weather

// Fallback gradient used when the condition code is unknown.
const DefaultGradient = "linear-gradient(135deg, #667eea 0%, #764ba2 100%)"

var gradients = map[Condition]string{
	ConditionStorm:  "linear-gradient(135deg, #232526 0%, #414345 100%)",
	ConditionRain:   "linear-gradient(135deg, #4b6cb7 0%, #182848 100%)",
	ConditionSnow:   "linear-gradient(135deg, #83a4d4 0%, #b6fbff 100%)",
	ConditionMist:   "linear-gradient(135deg, #3e5151 0%, #decba4 100%)",
	ConditionClear:  "linear-gradient(135deg, #2980b9 0%, #6dd5fa 100%, #ffffff 100%)",
	ConditionCloudy: "linear-gradient(135deg, #606c88 0%, #3f4c6b 100%)",
}

// WMO maps a WMO weather interpretation code to an emoji and a short description.
func WMO(code int) (icon string, description string) {
	switch {
	case code == 0:
		return "☀️", "Clear sky"
	case code == 1:
		return "🌤️", "Mainly clear"
	case code == 2:
		return "⛅", "Partly cloudy"
	case code == 3:
		return "☁️", "Overcast"
	case code == 45 || code == 48:
		return "🌫️", "Fog"
	case code >= 51 && code <= 57:
		return "🌦️", "Drizzle"
	case code >= 61 && code <= 67:
		return "🌧️", "Rain"
	case code >= 71 && code <= 77:
		return "❄️", "Snow"
	case code >= 80 && code <= 82:
		return "🌦️", "Rain showers"
	case code == 85 || code == 86:
		return "🌨️", "Snow showers"
	case code >= 95 && code <= 99:
		return "⛈️", "Thunderstorm"
	default:
		return "❔", "Unknown"
	}
}

// ConditionFromWMO normalizes a WMO weather code.
func ConditionFromWMO(code int) Condition {
	switch {
	case code == 0 || code == 1:
		return ConditionClear
	case code == 2 || code == 3:
		return ConditionCloudy
	case code == 45 || code == 48:
		return ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return ConditionSnow
	case code >= 95 && code <= 99:
		return ConditionStorm
	default:
		return ConditionUnknown
	}
}

// ConditionFromOWM normalizes an OpenWeather condition id.
func ConditionFromOWM(id int) Condition {
	switch {
	case id >= 200 && id < 300:
		return ConditionStorm
	case id >= 300 && id < 600:
		return ConditionRain
	case id >= 600 && id < 700:
		return ConditionSnow
	case id >= 700 && id < 800:
		return ConditionMist
	case id == 800:
		return ConditionClear
	case id > 800 && id < 900:
		return ConditionCloudy
	default:
		return ConditionUnknown
	}
}

// ConditionOf dispatches on the code scheme.
func ConditionOf(kind CodeKind, code int) Condition {
	if kind == CodeOWM {
		return ConditionFromOWM(code)
	}
	return ConditionFromWMO(code)
}

// Icon returns an emoji for any supported code.
func Icon(kind CodeKind, code int) string {
	if kind == CodeWMO {
		icon, _ := WMO(code)
		return icon
	}
	switch ConditionFromOWM(code) {
	case ConditionStorm:
		return "⛈️"
	case ConditionRain:
		return "🌧️"
	case ConditionSnow:
		return "❄️"
	case ConditionMist:
		return "🌫️"
	case ConditionClear:
		return "☀️"
	case ConditionCloudy:
		return "☁️"
	}
	return "❔"
}

// Gradient picks the page background for a condition code.
func Gradient(kind CodeKind, code int) string {
	if g, ok := gradients[ConditionOf(kind, code)]; ok {
		return g
	}
	return DefaultGradient
}
