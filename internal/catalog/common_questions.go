package catalog

import "github.com/typeform-survey/survey-client/internal/models"

const videoBase = "/typeform-survey/videos/"

// commonQuestions open every profession's sequence
var commonQuestions = []models.Question{
	{
		ID:   "common_1",
		Text: "What is your age group?",
		Kind: models.KindSingleChoice,
		Options: []string{
			"Under 20",
			"20–29",
			"30–39",
			"40–49",
			"50–59",
			"60 or older",
		},
		VideoSrc:         videoBase + "question1.mp4",
		AllowVideoUpload: true,
	},
	{
		ID:            "common_2",
		Text:          "Where do you currently store important digital information (notes, links, ideas, etc.)? (Select all that apply)",
		Kind:          models.KindMultiChoice,
		AllowMultiple: true,
		Options: []string{
			"Cloud storage (e.g., Google Drive, OneDrive)",
			"Note-taking apps (Notes, Evernote, etc.)",
			"Local text files (e.g., .txt, README, Markdown)",
			"Browser bookmarks (Chrome, Firefox, Edge, etc.)",
			"Chat messages (Slack, Teams, Discord)",
			"Personal wiki (Confluence, internal wiki, etc.)",
			"Other",
		},
		VideoSrc:         videoBase + "question2.mp4",
		AllowVideoUpload: true,
	},
	{
		ID:   "common_3",
		Text: "How frequently do you need to retrieve previously saved information or references (e.g., at work or for personal use)?",
		Kind: models.KindSingleChoice,
		Options: []string{
			"Never",
			"Multiple times a day",
			"Daily once or twice",
			"Weekly once or twice",
			"Monthly once or twice",
		},
		VideoSrc:         videoBase + "question3.mp4",
		AllowVideoUpload: true,
	},
	{
		ID:   "common_4",
		Text: "How often do you struggle to find something you know you saved?",
		Kind: models.KindSingleChoice,
		Options: []string{
			"Almost every day",
			"A few times a week",
			"Rarely",
			"Never",
		},
		VideoSrc:         videoBase + "question4.mp4",
		AllowVideoUpload: true,
	},
	{
		ID:   "common_5",
		Text: "Do you ever have trouble finding saved information because you don’t remember the exact keywords you used?",
		Kind: models.KindSingleChoice,
		Options: []string{
			"Very frequently",
			"Occasionally, but I usually find it",
			"No, I always remember my keywords",
		},
		VideoSrc:         videoBase + "question5.mp4",
		AllowVideoUpload: true,
	},
	{
		ID:            "common_6",
		Text:          "What is your main method for finding something you previously saved? (Select all that apply)",
		Kind:          models.KindMultiChoice,
		AllowMultiple: true,
		Options: []string{
			"Searching by specific keywords",
			"Browsing through folders or categories",
			"Checking bookmarks",
			"I usually remember exactly where I put it",
		},
		VideoSrc:         videoBase + "question6.mp4",
		AllowVideoUpload: true,
	},
	{
		ID:            "common_7",
		Text:          "What frustrates you the most when trying to retrieve saved information? (Select all that apply)",
		Kind:          models.KindMultiChoice,
		AllowMultiple: true,
		Options: []string{
			"I can’t recall the exact keywords I used.",
			"I don’t remember which platform or tool I used (Notion, Slack, Drive, GitHub, etc.).",
			"My own notes lack enough detail.",
			"The tool’s search feature is too slow or unreliable.",
			"I end up just searching online or redoing the work.",
		},
		VideoSrc:         videoBase + "question7.mp4",
		AllowVideoUpload: true,
	},
	{
		ID:   "common_8",
		Text: "Approximately how long does it usually take you to find a piece of information you’ve saved?",
		Kind: models.KindSingleChoice,
		Options: []string{
			"Less than 1 minute",
			"1–5 minutes",
			"5–15 minutes",
			"More than 15 minute",
		},
		VideoSrc:         videoBase + "question8.mp4",
		AllowVideoUpload: true,
	},
	{
		ID:   "common_9",
		Text: "How often do you fail to retrieve information you previously saved (note, snippet, link, etc)?",
		Kind: models.KindSingleChoice,
		Options: []string{
			"Frequently",
			"Occasionally",
			"Rarely",
			"Never",
		},
		VideoSrc:         videoBase + "question9.mp4",
		AllowVideoUpload: true,
	},
	{
		ID:   "common_10",
		Text: "Do you copy and paste important info, save the link with a description, or both?",
		Kind: models.KindSingleChoice,
		Options: []string{
			"I mostly copy and paste the relevant info into my own notes.",
			"I usually save the link and add a brief description.",
			"I do both: copy the info and store links with descriptions.",
			"I don’t do either one.",
		},
		VideoSrc:         videoBase + "question10.mp4",
		AllowVideoUpload: true,
	},
	{
		ID:   "common_11",
		Text: "Would you be interested in trying a tool that makes information retrieval effortless and frustration-free?",
		Kind: models.KindSingleChoice,
		Options: []string{
			"Yes, I’d love to try it.",
			"No, I’m happy with my current methods.",
		},
		VideoSrc:         videoBase + "question11.mp4",
		AllowVideoUpload: true,
	},
}
