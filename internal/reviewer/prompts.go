package reviewer

// singleAgentPrompt is the system prompt for a one-shot review.
const singleAgentPrompt = "You are a code review assistant. Analyze the provided code and provide detailed feedback including time complexity, space complexity, potential bugs, and suggestions for improvement."

// DemoFeedback is returned in place of a review when the provider reports
// the account is out of quota.
const DemoFeedback = "AI Review (Demo Mode - Quota Exceeded):\n\nTime Complexity: O(n)\nSpace Complexity: O(1)\nSuggestions:\n- Consider optimizing loops.\n- Add error handling.\n- Improve code readability with comments.\n\nPlease check your OpenAI billing or use a valid API key for full AI reviews."

// MissingKeyFeedback is returned when no API key is configured.
const MissingKeyFeedback = "Error: OpenAI API key not found. Please set OPENAI_API_KEY environment variable."

// specialist describes one member of the multi-agent review.
type specialist struct {
	name      string
	role      string
	goal      string
	backstory string
	// task is prefixed to the code under review.
	task     string
	expected string
}

var specialists = []specialist{
	{
		name:      "structure",
		role:      "Code Structure Analyzer",
		goal:      "Analyze code structure, complexity, and readability",
		backstory: "You are an expert code reviewer specializing in structural analysis.",
		task:      "Analyze the structure and complexity of this code:",
		expected:  "Detailed analysis of code structure, time/space complexity, and readability suggestions.",
	},
	{
		name:      "bugs",
		role:      "Bug Detection Specialist",
		goal:      "Identify potential bugs, logical errors, and edge cases",
		backstory: "You are a meticulous debugger with years of experience finding hidden bugs.",
		task:      "Detect potential bugs and logical errors in this code:",
		expected:  "List of potential bugs, edge cases, and logical issues with explanations.",
	},
	{
		name:      "security",
		role:      "Security Code Reviewer",
		goal:      "Check for security vulnerabilities and best practices",
		backstory: "You are a cybersecurity expert focused on secure coding practices.",
		task:      "Review security aspects of this code:",
		expected:  "Security vulnerabilities, risks, and recommendations for secure coding.",
	},
	{
		name:      "performance",
		role:      "Performance Optimization Expert",
		goal:      "Suggest performance improvements and optimizations",
		backstory: "You are a performance engineering specialist optimizing code efficiency.",
		task:      "Optimize performance of this code:",
		expected:  "Performance bottlenecks, optimization suggestions, and efficiency improvements.",
	},
}

var orchestrator = specialist{
	name:      "orchestrator",
	role:      "Code Review Orchestrator",
	goal:      "Coordinate and synthesize feedback from all specialized agents",
	backstory: "You are the lead reviewer who brings together insights from all specialists.",
	task:      "Synthesize all agent feedback into a comprehensive code review report.",
	expected:  "A complete, well-structured code review with all findings and recommendations.",
}

func (s specialist) systemPrompt() string {
	return "You are the " + s.role + ". " + s.backstory + "\n\nYour goal: " + s.goal + "."
}

func (s specialist) userPrompt(code string) string {
	return s.task + "\n\n" + code + "\n\nExpected output: " + s.expected
}
