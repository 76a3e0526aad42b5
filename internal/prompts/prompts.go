// Package prompts holds the fixed instruction templates sent to the AI
// backend and the static pricing catalogue.
package prompts

// ChatPrompt is appended to conversational requests so replies stay short and
// code-free; the generated project itself comes from the code path.
const ChatPrompt = `'You are an AI Assistant experienced in React Development.
GUIDELINES:
- Tell the user what you are building
- Respond in less than 15 lines.
- Skip code examples and commentary'`

// CodeGenPrompt is the fixed system instruction for the code-generation
// backend. It enumerates the required JSON output schema: project title,
// explanation, file-path to code mapping and the generated-file-name list.
const CodeGenPrompt = `Generate a Project in React. Create multiple components, organizing them in separate folders with filenames using the .js extension, if needed. The output should use Tailwind CSS for styling,
without any third-party dependencies or libraries, except for icons from the lucide-react library, which should only be used when necessary. Available icons include: Heart, Shield, Clock, Users, Play, Home, Search, Menu, User, Settings, Mail, Bell, Calendar, Star, Upload, Download, Trash, Edit, Plus, Minus, Check, X, and ArrowRight.

Return the response in JSON format with the following schema:
{
  "projectTitle": "",
  "explanation": "",
  "files": {
    "/App.js": {
      "code": ""
    },
    ...
  },
  "generatedFiles": []
}

Ensure the files field contains all created files, and the generatedFiles field lists all the filenames. Each file's code should be included in the code field.

- When necessary, you may use the following packages: date-fns, react-chartjs-2, firebase, @google/generative-ai.
- Use placeholder images from https://archive.org/download/placeholder-image/placeholder-image.jpg.
- Add emoji icons whenever needed to enhance user experience.
- All designs should be beautiful, fully-featured, and production-ready.
- Use icons from lucide-react for logos.
- Use stock photos from Unsplash where appropriate, linking to valid URLs.`

// CodeSeedExample is a compact model reply seeded into the code-generation
// chat history so the backend answers in the schema above instead of prose.
const CodeSeedExample = "```json\n" + `{
  "projectTitle": "React To-Do App",
  "explanation": "A simple to-do application built with React and styled with Tailwind CSS.",
  "files": {
    "/App.js": {
      "code": "import React from 'react';\n\nexport default function App() {\n  return <h1 className=\"text-3xl font-bold\">My To-Do List</h1>;\n}"
    }
  },
  "generatedFiles": ["/App.js"]
}` + "\n```"

// Suggestions seed the landing page's example prompts.
var Suggestions = []string{
	"Create ToDo App in React",
	"Create Budget Track App",
	"Create Gym Management Portal Dashboard",
	"Create Quiz App On History",
	"Create Login Signup Screen",
}

// SignupTokenGrant is the token balance granted to every new user.
const SignupTokenGrant = 80000

// PricingOption is one purchasable token tier.
type PricingOption struct {
	Name   string  `json:"name"`
	Tokens string  `json:"tokens"`
	Value  int     `json:"value"`
	Desc   string  `json:"desc"`
	Price  float64 `json:"price"`
}

var PricingOptions = []PricingOption{
	{
		Name:   "Basic",
		Tokens: "50K",
		Value:  50000,
		Desc:   "Ideal for hobbyists and casual users for light, exploratory use.",
		Price:  4.99,
	},
	{
		Name:   "Starter",
		Tokens: "120K",
		Value:  120000,
		Desc:   "Designed for professionals who need to use Bolt a few times per week.",
		Price:  9.99,
	},
	{
		Name:   "Pro",
		Tokens: "2.5M",
		Value:  2500000,
		Desc:   "Designed for professionals who need to use Bolt a few times per week.",
		Price:  19.99,
	},
	{
		Name:   "Unlimited (License)",
		Tokens: "Unlimited",
		Value:  999999999,
		Desc:   "Designed for professionals who need to use Bolt a few times per week.",
		Price:  49.99,
	},
}
