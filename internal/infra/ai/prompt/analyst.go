package prompt

import "fmt"

// GetSystemPrompt provides strict directions and the result schema for
// backends without native schema enforcement (OpenAI JSON mode).
func GetSystemPrompt() string {
	return `You are a senior security operations analyst. You must produce one valid JSON object only (no markdown, no commentary, no code fences) that follows the schema below.

Requirements:
- riskScore is a number from 0 to 100 indicating overall security risk.
- riskLevel is exactly one of: Low, Medium, High, Critical.
- anomalies[].severity uses the same four values.
- suggestions[].priority is one of: Immediate, High, Normal.
- suggestions[].type is one of: Network, System, Policy.
- threatDistribution values are raw counts or intensities, not percentages.
- All six top-level fields are required; arrays may be empty but must be present.

Schema (example with empty values):
{
  "riskScore": 0,
  "riskLevel": "Low",
  "summary": "<string>",
  "anomalies": [
    {"id": "<string>", "timestamp": "<string>", "eventType": "<string>", "severity": "<Low|Medium|High|Critical>", "description": "<string>", "sourceIp": "<string, optional>"}
  ],
  "suggestions": [
    {"id": "<string>", "action": "<string>", "reason": "<string>", "priority": "<Immediate|High|Normal>", "type": "<Network|System|Policy>"}
  ],
  "threatDistribution": [
    {"name": "<category, e.g. Auth, Network, Malware>", "value": 0}
  ]
}`
}

// GetUserPrompt builds the analysis instruction around the submitted log text.
// Image attachments ride alongside as separate message parts.
func GetUserPrompt(logText string) string {
	return fmt.Sprintf(`Analyze the following system logs and/or network diagrams for security breaches, anomalies, and potential threats.

LOG DATA:
%s

INSTRUCTIONS:
1. Identify any suspicious activities (brute force, unauthorized access, data exfiltration, anomalies).
2. Assign a risk score (0-100) and level.
3. List specific anomalies found with timestamps.
4. Provide actionable suggestions to mitigate these risks.
5. Categorize threats for visualization.

Return the response strictly in JSON format matching the schema.`, logText)
}
